package input

import (
	"github.com/go-vgo/robotgo"
)

// robotKeys maps key names that robotgo spells differently.
var robotKeys = map[string]string{
	"escape": "esc",
	"return": "enter",
}

// robotgo calls that can fail, swappable in tests.
var (
	keyTap = robotgo.KeyTap
	toggle = robotgo.Toggle
)

// RobotInjector injects input through robotgo. Cursor moves are clamped to
// the primary screen.
type RobotInjector struct {
	width  int
	height int
}

// NewRobotInjector creates a RobotInjector sized to the primary screen.
func NewRobotInjector() *RobotInjector {
	w, h := robotgo.GetScreenSize()
	return &RobotInjector{width: w, height: h}
}

// ScreenSize returns the primary screen size in pixels.
func (r *RobotInjector) ScreenSize() (int, int) {
	return r.width, r.height
}

func (r *RobotInjector) MoveCursorTo(x, y int) error {
	x, y = clampToScreen(x, y, r.width, r.height)
	robotgo.Move(x, y)
	return nil
}

func (r *RobotInjector) Click() error {
	robotgo.Click("left")
	return nil
}

func (r *RobotInjector) RightClick() error {
	robotgo.Click("right")
	return nil
}

func (r *RobotInjector) DoubleClick() error {
	robotgo.Click("left", true)
	return nil
}

func (r *RobotInjector) Scroll(delta int) error {
	switch {
	case delta > 0:
		robotgo.ScrollDir(delta, "up")
	case delta < 0:
		robotgo.ScrollDir(-delta, "down")
	}
	return nil
}

func (r *RobotInjector) MouseDown() error {
	return toggle("left")
}

func (r *RobotInjector) MouseUp() error {
	return toggle("left", "up")
}

func (r *RobotInjector) PressKey(name string) error {
	return keyTap(robotKey(name))
}

func (r *RobotInjector) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func robotKey(name string) string {
	if k, ok := robotKeys[name]; ok {
		return k
	}
	return name
}

// clampToScreen bounds a point to [0,w-1]x[0,h-1]. A zero-sized screen
// leaves the point untouched.
func clampToScreen(x, y, w, h int) (int, int) {
	if w > 0 {
		x = max(0, min(x, w-1))
	}
	if h > 0 {
		y = max(0, min(y, h-1))
	}
	return x, y
}
