// Package ui renders the touch panel screens. Drawing and touch sampling are
// delegated to Display and Touch; the Presenter is a state machine advanced by
// Step from the control loop and never blocks.
package ui

const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

// Color is an RGB565 value.
type Color uint16

const (
	Black     Color = 0x0000
	White     Color = 0xFFFF
	Red       Color = 0xF800
	Green     Color = 0x07E0
	Blue      Color = 0x001F
	Cyan      Color = 0x07FF
	Magenta   Color = 0xF81F
	Yellow    Color = 0xFFE0
	LightBlue Color = 0x867D
	Brown     Color = 0x8A22
)

func RGB565(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// Display is the panel driver.
type Display interface {
	Clear(c Color)
	FillRect(x, y, w, h int, c Color)
	DrawRect(x, y, w, h int, c Color)
	FillCircle(x, y, r int, c Color)
	DrawCircle(x, y, r int, c Color)
	DrawLine(x0, y0, x1, y1 int, c Color)
	DrawText(x, y int, s string, fg, bg Color)
	DrawPixel(x, y int, c Color)
}

type Point struct{ X, Y int }

// Range is the raw touch span mapped onto the screen.
type Range struct{ XMin, XMax, YMin, YMax int }

// Touch is the touch controller. Touch returns calibrated coordinates,
// RawTouch the controller's raw sample.
type Touch interface {
	Touch() (Point, bool)
	RawTouch() (Point, bool)
	SetRange(r Range) error
}
