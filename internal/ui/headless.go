package ui

import (
	"log"
	"strings"
)

// LogDisplay stands in for the panel on hosts without one: text that changes
// at a position is logged, shapes are dropped.
type LogDisplay struct {
	text map[Point]string
}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{text: map[Point]string{}}
}

func (l *LogDisplay) Clear(Color) {
	l.text = map[Point]string{}
}

func (l *LogDisplay) DrawText(x, y int, s string, _, _ Color) {
	s = strings.TrimSpace(s)
	at := Point{x, y}
	if l.text[at] == s {
		return
	}
	l.text[at] = s
	log.Printf("display: %s", s)
}

func (l *LogDisplay) FillRect(int, int, int, int, Color) {}
func (l *LogDisplay) DrawRect(int, int, int, int, Color) {}
func (l *LogDisplay) FillCircle(int, int, int, Color)    {}
func (l *LogDisplay) DrawCircle(int, int, int, Color)    {}
func (l *LogDisplay) DrawLine(int, int, int, int, Color) {}
func (l *LogDisplay) DrawPixel(int, int, Color)          {}

// NoTouch never reports contact, so the UI stays on its default path.
type NoTouch struct{}

func (NoTouch) Touch() (Point, bool)    { return Point{}, false }
func (NoTouch) RawTouch() (Point, bool) { return Point{}, false }
func (NoTouch) SetRange(Range) error    { return nil }
