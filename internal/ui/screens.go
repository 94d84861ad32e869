package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

type menuButton struct {
	label string
	x, y  int
	color Color
}

var menuButtons = []menuButton{
	{ItemTemp, 20, 45, Red},
	{ItemHumidity, 170, 45, Blue},
	{ItemLight, 20, 95, Green},
	{ItemSoil, 170, 95, Cyan},
	{ItemIrrigation, 20, 145, Magenta},
	{ItemFertigation, 170, 145, Yellow},
	{ItemFan, 70, 195, White},
}

const (
	buttonW = 130
	buttonH = 35
)

type statusIcon struct {
	label    string
	actuator entities.Actuator
	textX    int
	iconX    int
}

var statusIcons = []statusIcon{
	{"FAN", entities.Fan, 190, 225},
	{"RIE", entities.Irrigation, 240, 275},
	{"FER", entities.Fertigation, 290, ScreenWidth - 10},
}

func (p *Presenter) drawWelcome() {
	p.d.Clear(Black)
	drawCrosshair(p.d, ScreenWidth/2, 90, 30)
	p.d.DrawText(100, 150, "INVERNADERO", Green, Black)
	p.d.DrawText(40, 180, "Toque la pantalla para calibrar", White, Black)
}

func (p *Presenter) drawCalibration() {
	p.d.Clear(Black)
	p.d.DrawText(40, 20, "CALIBRACION TACTIL", Yellow, Black)
	drawCrosshair(p.d, ScreenWidth/2, ScreenHeight/2+10, 30)
	p.drawCorner(0)
}

func (p *Presenter) drawCorner(i int) {
	c := calibrationCorners[i]
	p.d.FillCircle(c.x, c.y, 5, Red)
	p.d.FillRect(20, 40, ScreenWidth-40, 8, Black)
	p.d.DrawText(20, 40, c.msg, White, Black)
}

func (p *Presenter) drawMenu() {
	p.d.Clear(Black)
	p.d.DrawText(90, 15, "MENU DE CONTROL", Yellow, Black)
	for _, b := range menuButtons {
		p.d.FillRect(b.x, b.y, buttonW, buttonH, b.color)
		p.d.DrawText(b.x+8, b.y+12, b.label, Black, b.color)
	}
}

// drawStatusBar shows one indicator per actuator: filled green when on,
// black with a white ring when off.
func (p *Presenter) drawStatusBar() {
	p.d.FillRect(0, 0, ScreenWidth, 12, Black)
	for _, s := range statusIcons {
		p.d.DrawText(s.textX, 2, s.label, White, Black)
		if p.ctrl.IsOn(s.actuator) {
			p.d.FillCircle(s.iconX, 6, 5, Green)
		} else {
			p.d.FillCircle(s.iconX, 6, 5, Black)
			p.d.DrawCircle(s.iconX, 6, 5, White)
		}
	}
	p.statusDirty = false
}

func (p *Presenter) drawBack() {
	p.d.FillRect(100, 205, 120, 28, Red)
	p.d.DrawText(128, 214, "VOLVER", White, Red)
}

const (
	soilFirstRow = 65
	soilRowStep  = 28
	valueX       = 130
	labelY       = 85
)

func (p *Presenter) drawReadingFrame() {
	p.d.Clear(Black)
	switch p.screen {
	case ScreenTemperature:
		drawThermometer(p.d, 15, 30)
	case ScreenHumidity:
		drawDrop(p.d, 70, 95, 30)
	case ScreenLight:
		drawSun(p.d, 70, 95, 30)
	case ScreenSoil:
		p.d.DrawText(90, 20, "HUMEDAD DE SUELO", Yellow, Black)
		for ch := 0; ch < p.sensors.Channels(); ch++ {
			y := soilFirstRow + ch*soilRowStep
			drawSoilProbe(p.d, 15, y)
			p.d.DrawText(33, y+8, fmt.Sprintf("Sensor Suelo %d:", ch+1), Cyan, Black)
		}
	}
	p.drawBack()
}

func (p *Presenter) drawReading() {
	switch p.screen {
	case ScreenTemperature:
		t, _, err := p.sensors.ReadTemperatureHumidity()
		p.drawValue("Temperatura:", fmt.Sprintf("%.2f C", t), Red, "Err SHT30:", err)
	case ScreenHumidity:
		_, rh, err := p.sensors.ReadTemperatureHumidity()
		p.drawValue("Humedad:", fmt.Sprintf("%.1f %%", rh), Blue, "Err SHT30:", err)
	case ScreenLight:
		lux, err := p.sensors.ReadLux()
		p.drawValue("Luz (lux):", fmt.Sprintf("%.0f lx", lux), Green, "Err BH1750:", err)
	case ScreenSoil:
		p.drawSoilValues()
	}
}

func (p *Presenter) drawValue(label, value string, color Color, errLabel string, err error) {
	p.d.FillRect(valueX-5, labelY-2, 185, 40, Black)
	if err != nil {
		p.d.DrawText(valueX, labelY, errLabel, Red, Black)
		p.d.DrawText(valueX, labelY+20, truncate(err.Error(), 22), Red, Black)
		return
	}
	p.d.DrawText(valueX, labelY, label, color, Black)
	p.d.DrawText(valueX, labelY+20, value, color, Black)
}

func (p *Presenter) drawSoilValues() {
	x := ScreenWidth - 50
	raws := make([]string, 0, p.sensors.Channels())
	for ch := 0; ch < p.sensors.Channels(); ch++ {
		y := soilFirstRow + ch*soilRowStep + 8
		p.d.FillRect(x, y, 40, 8, Black)
		s, err := p.sensors.ReadSoil(ch)
		if err != nil {
			p.d.DrawText(x, y, "Err", Red, Black)
			raws = append(raws, fmt.Sprintf("%d=err", ch+1))
			continue
		}
		p.d.DrawText(x, y, fmt.Sprintf("%d%%", s.Percent), Cyan, Black)
		raws = append(raws, fmt.Sprintf("%d=%d", ch+1, s.Raw))
	}
	log.Printf("ui: soil raw %s", strings.Join(raws, " "))
}

func (p *Presenter) drawToggle() {
	p.d.Clear(Black)
	p.d.DrawText(70, 70, p.toggle.label, p.toggle.color, Black)
	p.drawToggleState()
	p.d.FillRect(50, 140, 80, 30, Green)
	p.d.DrawText(75, 150, "ON", Black, Green)
	p.d.FillRect(190, 140, 80, 30, Red)
	p.d.DrawText(210, 150, "OFF", White, Red)
	p.drawBack()
}

func (p *Presenter) drawToggleState() {
	state := "Estado: OFF "
	if p.ctrl.IsOn(p.toggle.actuator) {
		state = "Estado: ON  "
	}
	p.d.DrawText(70, 95, state, p.toggle.color, Black)
	p.statusDirty = false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func drawCrosshair(d Display, cx, cy, r int) {
	d.DrawCircle(cx, cy, r, White)
	d.DrawCircle(cx, cy, r-1, White)
	d.FillCircle(cx, cy, r*2/3, LightBlue)
	d.FillCircle(cx, cy, r/4, White)
	l := r + 5
	d.DrawLine(cx-l, cy, cx+l, cy, White)
	d.DrawLine(cx, cy-l, cx, cy+l, White)
}

func drawThermometer(d Display, x, y int) {
	d.FillCircle(x+25, y+25, 15, Red)
	d.DrawRect(x+60, y+10, 16, 60, White)
	d.FillRect(x+64, y+40, 8, 30, Red)
	d.DrawCircle(x+68, y+80, 12, White)
	d.FillCircle(x+68, y+80, 10, Red)
}

func drawDrop(d Display, cx, cy, r int) {
	d.FillCircle(cx, cy, r, Blue)
	off, cr := r/3, r/4
	d.FillCircle(cx-off, cy-off, cr, White)
	d.FillCircle(cx+off, cy+off, cr, White)
	d.DrawLine(cx+off, cy-off-cr, cx-off, cy+off+cr, White)
}

func drawSun(d Display, cx, cy, r int) {
	d.FillCircle(cx, cy, r*2/3, Green)
	for _, v := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}} {
		d.DrawLine(cx+v[0]*(r*3/4), cy+v[1]*(r*3/4), cx+v[0]*r, cy+v[1]*r, Green)
	}
}

func drawSoilProbe(d Display, x, y int) {
	d.FillRect(x, y, 10, 8, Brown)
	d.FillRect(x+3, y+8, 4, 17, White)
	d.DrawPixel(x+5, y+24, White)
}
