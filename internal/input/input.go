// Package input drives operating-system mouse and keyboard input.
package input

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by Apply for an Action with an unrecognized Kind.
var ErrUnknownAction = errors.New("unknown input action")

// Injector performs primitive input operations.
type Injector interface {
	MoveCursorTo(x, y int) error
	Click() error
	RightClick() error
	DoubleClick() error
	// Scroll scrolls by delta units; positive values scroll up.
	Scroll(delta int) error
	MouseDown() error
	MouseUp() error
	PressKey(name string) error
	TypeText(text string) error
}

// Kind names an input operation.
type Kind string

const (
	KindMove        Kind = "move"
	KindClick       Kind = "click"
	KindRightClick  Kind = "right-click"
	KindDoubleClick Kind = "double-click"
	KindScroll      Kind = "scroll"
	KindMouseDown   Kind = "mouse-down"
	KindMouseUp     Kind = "mouse-up"
	KindPressKey    Kind = "press-key"
	KindTypeText    Kind = "type-text"
)

// Action is one input operation with its arguments.
type Action struct {
	Kind  Kind   `json:"kind"`
	X     int    `json:"x,omitempty"`
	Y     int    `json:"y,omitempty"`
	Delta int    `json:"delta,omitempty"`
	Text  string `json:"text,omitempty"`
}

func Move(x, y int) Action        { return Action{Kind: KindMove, X: x, Y: y} }
func Click() Action               { return Action{Kind: KindClick} }
func RightClick() Action          { return Action{Kind: KindRightClick} }
func DoubleClick() Action         { return Action{Kind: KindDoubleClick} }
func Scroll(delta int) Action     { return Action{Kind: KindScroll, Delta: delta} }
func MouseDown() Action           { return Action{Kind: KindMouseDown} }
func MouseUp() Action             { return Action{Kind: KindMouseUp} }
func PressKey(name string) Action { return Action{Kind: KindPressKey, Text: name} }
func TypeText(text string) Action { return Action{Kind: KindTypeText, Text: text} }

func (a Action) String() string {
	switch a.Kind {
	case KindMove:
		return fmt.Sprintf("move(%d,%d)", a.X, a.Y)
	case KindScroll:
		return fmt.Sprintf("scroll(%d)", a.Delta)
	case KindPressKey, KindTypeText:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
	default:
		return string(a.Kind)
	}
}

// Apply performs a on inj.
func Apply(inj Injector, a Action) error {
	var err error
	switch a.Kind {
	case KindMove:
		err = inj.MoveCursorTo(a.X, a.Y)
	case KindClick:
		err = inj.Click()
	case KindRightClick:
		err = inj.RightClick()
	case KindDoubleClick:
		err = inj.DoubleClick()
	case KindScroll:
		err = inj.Scroll(a.Delta)
	case KindMouseDown:
		err = inj.MouseDown()
	case KindMouseUp:
		err = inj.MouseUp()
	case KindPressKey:
		err = inj.PressKey(a.Text)
	case KindTypeText:
		err = inj.TypeText(a.Text)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	return nil
}
