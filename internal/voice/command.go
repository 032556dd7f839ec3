// Package voice turns recognized speech into input actions.
package voice

import (
	"strings"

	"github.com/ayusman/mudra/internal/input"
)

// ScrollAmount is the scroll distance of a spoken scroll command.
const ScrollAmount = 300

// Kind identifies a parsed voice command.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindClick
	KindRightClick
	KindDoubleClick
	KindScrollUp
	KindScrollDown
	KindTypeText
	KindKeyPress
	KindGreeting
)

func (k Kind) String() string {
	switch k {
	case KindClick:
		return "click"
	case KindRightClick:
		return "right-click"
	case KindDoubleClick:
		return "double-click"
	case KindScrollUp:
		return "scroll-up"
	case KindScrollDown:
		return "scroll-down"
	case KindTypeText:
		return "type-text"
	case KindKeyPress:
		return "key-press"
	case KindGreeting:
		return "greeting"
	default:
		return "unrecognized"
	}
}

// Command is a parsed transcript. Text carries the payload of
// KindTypeText and KindKeyPress.
type Command struct {
	Kind Kind
	Text string
}

var (
	clickPhrases       = []string{"click", "click mouse", "left click"}
	rightClickPhrases  = []string{"right click", "right mouse"}
	doubleClickPhrases = []string{"double click", "double"}
	greetingPhrases    = []string{"hello", "hi there", "hey"}
)

// specialKeys maps spoken key names to canonical key identifiers.
var specialKeys = map[string]string{
	"enter":     "enter",
	"space":     "space",
	"tab":       "tab",
	"escape":    "escape",
	"esc":       "escape",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"backspace": "backspace",
	"delete":    "delete",
	"home":      "home",
	"end":       "end",
	"page up":   "pageup",
	"page down": "pagedown",
}

const (
	typePrefix  = "type "
	pressPrefix = "press "
)

// Parse matches a lower-cased transcript against the command grammar. Rules
// are tried in order and the first match wins. A transcript mentioning
// "scroll" without a direction matches nothing.
func Parse(transcript string) Command {
	switch {
	case oneOf(transcript, clickPhrases):
		return Command{Kind: KindClick}
	case oneOf(transcript, rightClickPhrases):
		return Command{Kind: KindRightClick}
	case oneOf(transcript, doubleClickPhrases):
		return Command{Kind: KindDoubleClick}
	case strings.Contains(transcript, "scroll"):
		switch {
		case strings.Contains(transcript, "up"):
			return Command{Kind: KindScrollUp}
		case strings.Contains(transcript, "down"):
			return Command{Kind: KindScrollDown}
		}
		return Command{Kind: KindUnrecognized}
	case strings.HasPrefix(transcript, typePrefix):
		return Command{Kind: KindTypeText, Text: transcript[len(typePrefix):]}
	case strings.HasPrefix(transcript, pressPrefix):
		return Command{Kind: KindKeyPress, Text: KeyName(transcript[len(pressPrefix):])}
	case oneOf(transcript, greetingPhrases):
		return Command{Kind: KindGreeting}
	}
	return Command{Kind: KindUnrecognized}
}

// KeyName returns the canonical identifier for a spoken key name, or the
// name itself if it is not a special key.
func KeyName(spoken string) string {
	if k, ok := specialKeys[spoken]; ok {
		return k
	}
	return spoken
}

// Action returns the input action for c. Greetings and unrecognized
// commands have none.
func (c Command) Action() (input.Action, bool) {
	switch c.Kind {
	case KindClick:
		return input.Click(), true
	case KindRightClick:
		return input.RightClick(), true
	case KindDoubleClick:
		return input.DoubleClick(), true
	case KindScrollUp:
		return input.Scroll(ScrollAmount), true
	case KindScrollDown:
		return input.Scroll(-ScrollAmount), true
	case KindTypeText:
		return input.TypeText(c.Text), true
	case KindKeyPress:
		return input.PressKey(c.Text), true
	}
	return input.Action{}, false
}

// Describe returns a short activity-log line for c.
func (c Command) Describe() string {
	switch c.Kind {
	case KindClick:
		return "Left click"
	case KindRightClick:
		return "Right click"
	case KindDoubleClick:
		return "Double click"
	case KindScrollUp:
		return "Scrolling up"
	case KindScrollDown:
		return "Scrolling down"
	case KindTypeText:
		return "Typing: " + c.Text
	case KindKeyPress:
		return "Pressed " + c.Text + " key"
	case KindGreeting:
		return "Greeting"
	}
	return "Unrecognized command"
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
