package ui

import (
	"log"
	"time"

	"github.com/MateoEspitia-dev/greenhouse/internal/clock"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/messages"
)

// Sensors is what the reading screens display.
type Sensors interface {
	ReadTemperatureHumidity() (tempC, rh float64, err error)
	ReadLux() (float64, error)
	ReadSoil(channel int) (entities.SoilSensor, error)
	Channels() int
}

// Controls switches actuators from the toggle screens.
type Controls interface {
	SetManual(a entities.Actuator, on bool) error
	IsOn(a entities.Actuator) bool
}

type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenCalibration
	ScreenMenu
	ScreenTemperature
	ScreenHumidity
	ScreenLight
	ScreenSoil
	ScreenToggle
)

var screenNames = map[Screen]string{
	ScreenWelcome:     "welcome",
	ScreenCalibration: "calibration",
	ScreenMenu:        "menu",
	ScreenTemperature: "temperature",
	ScreenHumidity:    "humidity",
	ScreenLight:       "light",
	ScreenSoil:        "soil",
	ScreenToggle:      "toggle",
}

func (s Screen) String() string { return screenNames[s] }

type Options struct {
	Refresh        time.Duration // reading screens redraw period
	WelcomeTimeout time.Duration // wait for a calibration touch
	Hold           time.Duration // confirmation shown before returning to the menu
}

func (o *Options) defaults() {
	if o.Refresh <= 0 {
		o.Refresh = 500 * time.Millisecond
	}
	if o.WelcomeTimeout <= 0 {
		o.WelcomeTimeout = 3 * time.Second
	}
	if o.Hold <= 0 {
		o.Hold = 500 * time.Millisecond
	}
}

type toggleTarget struct {
	actuator entities.Actuator
	label    string
	color    Color
}

var toggles = map[string]toggleTarget{
	ItemIrrigation:  {entities.Irrigation, ItemIrrigation, Magenta},
	ItemFertigation: {entities.Fertigation, ItemFertigation, Yellow},
	ItemFan:         {entities.Fan, ItemFan, White},
}

var readingScreens = map[string]Screen{
	ItemTemp:     ScreenTemperature,
	ItemHumidity: ScreenHumidity,
	ItemLight:    ScreenLight,
	ItemSoil:     ScreenSoil,
}

// Presenter drives the screens. Like the engine it must only be used from
// the control loop goroutine.
type Presenter struct {
	d       Display
	t       Touch
	sensors Sensors
	ctrl    Controls
	clock   clock.Clock
	opts    Options

	screen      Screen
	enteredAt   uint32
	lastRefresh uint32
	refreshed   bool
	held        bool // touch still down since the last accepted press
	corners     []Point
	toggle      toggleTarget
	leaving     bool
	leaveAt     uint32
	statusDirty bool
}

func NewPresenter(d Display, t Touch, s Sensors, c Controls, clk clock.Clock, opts Options) *Presenter {
	opts.defaults()
	return &Presenter{d: d, t: t, sensors: s, ctrl: c, clock: clk, opts: opts}
}

// Start shows the welcome screen.
func (p *Presenter) Start() {
	p.enter(ScreenWelcome)
}

func (p *Presenter) Screen() Screen { return p.screen }

// OnStatusChanged marks the status indicators stale; they are redrawn on the
// next Step of a screen that shows them.
func (p *Presenter) OnStatusChanged(messages.StatusChanged) {
	p.statusDirty = true
}

// Step polls touch once and advances the current screen.
func (p *Presenter) Step() {
	now := p.clock.NowMs()
	switch p.screen {
	case ScreenWelcome:
		if _, ok := p.press(p.t.RawTouch); ok {
			p.enter(ScreenCalibration)
			return
		}
		if clock.Elapsed(now, p.enteredAt) >= clock.Millis(p.opts.WelcomeTimeout) {
			p.enter(ScreenMenu)
		}
	case ScreenCalibration:
		p.stepCalibration(now)
	case ScreenMenu:
		if p.statusDirty {
			p.drawStatusBar()
		}
		if pt, ok := p.press(p.t.Touch); ok {
			if item, ok := hit(menuZones, panelToZone(pt)); ok {
				p.open(item)
			}
		}
	case ScreenTemperature, ScreenHumidity, ScreenLight, ScreenSoil:
		if !p.refreshed || clock.Elapsed(now, p.lastRefresh) >= clock.Millis(p.opts.Refresh) {
			p.drawReading()
			p.lastRefresh = now
			p.refreshed = true
		}
		if pt, ok := p.press(p.t.Touch); ok && backZone.Contains(panelToZone(pt)) {
			p.enter(ScreenMenu)
		}
	case ScreenToggle:
		p.stepToggle(now)
	}
}

func (p *Presenter) open(item string) {
	log.Printf("ui: open %s", item)
	if s, ok := readingScreens[item]; ok {
		p.enter(s)
		return
	}
	if tg, ok := toggles[item]; ok {
		p.toggle = tg
		p.enter(ScreenToggle)
	}
}

func (p *Presenter) enter(s Screen) {
	p.screen = s
	p.enteredAt = p.clock.NowMs()
	p.refreshed = false
	p.leaving = false
	p.held = true
	switch s {
	case ScreenWelcome:
		p.drawWelcome()
	case ScreenCalibration:
		p.corners = p.corners[:0]
		p.drawCalibration()
	case ScreenMenu:
		p.drawMenu()
		p.drawStatusBar()
	case ScreenTemperature, ScreenHumidity, ScreenLight, ScreenSoil:
		p.drawReadingFrame()
	case ScreenToggle:
		p.drawToggle()
	}
}

// press reports a new touch: the sample must follow a step without contact.
func (p *Presenter) press(sample func() (Point, bool)) (Point, bool) {
	pt, ok := sample()
	if !ok {
		p.held = false
		return Point{}, false
	}
	if p.held {
		return Point{}, false
	}
	p.held = true
	z := panelToZone(pt)
	log.Printf("ui: touch x=%d y=%d", z.X, z.Y)
	return pt, true
}

var calibrationCorners = []struct {
	x, y int
	msg  string
}{
	{20, 20, "Toca esquina SUP IZQ"},
	{300, 20, "Toca esquina SUP DER"},
	{20, 220, "Toca esquina INF IZQ"},
	{300, 220, "Toca esquina INF DER"},
}

func (p *Presenter) stepCalibration(now uint32) {
	if p.leaving {
		if clock.Elapsed(now, p.leaveAt) >= clock.Millis(2*p.opts.Hold) {
			p.enter(ScreenMenu)
		}
		return
	}
	pt, ok := p.press(p.t.RawTouch)
	if !ok {
		return
	}
	p.corners = append(p.corners, pt)
	if len(p.corners) < len(calibrationCorners) {
		p.drawCorner(len(p.corners))
		return
	}
	r := rangeOf(p.corners)
	if err := p.t.SetRange(r); err != nil {
		log.Printf("ui: touch calibration not applied: %v", err)
	} else {
		log.Printf("ui: touch calibrated x=%d..%d y=%d..%d", r.XMin, r.XMax, r.YMin, r.YMax)
	}
	p.d.Clear(Black)
	p.d.DrawText(40, 100, "Calibracion guardada", Green, Black)
	p.leaving = true
	p.leaveAt = now
}

func rangeOf(pts []Point) Range {
	r := Range{XMin: pts[0].X, XMax: pts[0].X, YMin: pts[0].Y, YMax: pts[0].Y}
	for _, pt := range pts[1:] {
		r.XMin = min(r.XMin, pt.X)
		r.XMax = max(r.XMax, pt.X)
		r.YMin = min(r.YMin, pt.Y)
		r.YMax = max(r.YMax, pt.Y)
	}
	return r
}

func (p *Presenter) stepToggle(now uint32) {
	if p.leaving {
		if clock.Elapsed(now, p.leaveAt) >= clock.Millis(p.opts.Hold) {
			p.enter(ScreenMenu)
		}
		return
	}
	if p.statusDirty {
		p.drawToggleState()
	}
	pt, ok := p.press(p.t.Touch)
	if !ok {
		return
	}
	z := panelToZone(pt)
	switch {
	case onZone.Contains(z):
		p.switchActuator(true, now)
	case offZone.Contains(z):
		p.switchActuator(false, now)
	case backZone.Contains(z):
		p.enter(ScreenMenu)
	}
}

func (p *Presenter) switchActuator(on bool, now uint32) {
	if err := p.ctrl.SetManual(p.toggle.actuator, on); err != nil {
		log.Printf("ui: %s %s failed: %v", p.toggle.actuator, entities.StateOf(on), err)
		p.d.DrawText(70, 115, "Error", Red, Black)
	}
	p.drawToggleState()
	p.leaving = true
	p.leaveAt = now
}
