package gesture

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/input"
)

const (
	// ClickCooldownFrames is how many frames must pass between two clicks.
	ClickCooldownFrames = 10
	// ScrollTick is the scroll amount emitted per frame in a scroll mode.
	ScrollTick = 10
)

// Reasons reported with events.DragEnded.
const (
	DragEndHandLost   = "hand lost"
	DragEndModeChange = "mode change"
	DragEndStopped    = "stopped"
)

// WindowSource supplies the smoothing window size, read once per frame.
type WindowSource interface {
	Smoothing() int
}

// Config sizes an Interpreter.
type Config struct {
	CamWidth     int
	CamHeight    int
	ScreenWidth  int
	ScreenHeight int
	// Smoothing is consulted every frame. When nil the window stays at
	// InitialSmoothing.
	Smoothing        WindowSource
	InitialSmoothing int
}

// Result is the outcome of one processed frame.
type Result struct {
	Actions     []input.Action
	Events      []events.Event
	HandPresent bool
	Count       int
	Stabilized  int
	Mode        Mode
}

func (r *Result) act(a input.Action) {
	r.Actions = append(r.Actions, a)
}

func (r *Result) emit(e events.Event) {
	r.Events = append(r.Events, e)
}

// Interpreter runs the per-frame gesture chain and owns all of its state.
// It is not safe for concurrent use.
type Interpreter struct {
	mapper     Mapper
	tuning     WindowSource
	stabilizer *Stabilizer
	smoother   *Smoother
	modes      *ModeMachine
	drag       DragSession

	clickCooldown int
	handPresent   bool
}

// NewInterpreter creates an Interpreter in Navigation mode.
func NewInterpreter(cfg Config, now time.Time) *Interpreter {
	window := cfg.InitialSmoothing
	if cfg.Smoothing != nil {
		window = cfg.Smoothing.Smoothing()
	}
	if window < 1 {
		window = 1
	}

	return &Interpreter{
		mapper:     NewMapper(cfg.CamWidth, cfg.CamHeight, cfg.ScreenWidth, cfg.ScreenHeight),
		tuning:     cfg.Smoothing,
		stabilizer: NewStabilizer(StabilizerWindow),
		smoother:   NewSmoother(window),
		modes:      NewModeMachine(now),
	}
}

// SetFrameSize updates the camera frame size used for coordinate mapping.
func (i *Interpreter) SetFrameSize(width, height int) {
	i.mapper.CamWidth = width
	i.mapper.CamHeight = height
}

// Mode returns the committed mode.
func (i *Interpreter) Mode() Mode {
	return i.modes.Mode()
}

// Dragging reports whether a drag session is open.
func (i *Interpreter) Dragging() bool {
	return i.drag.Open()
}

// HandPresent reports whether the last processed frame had a hand.
func (i *Interpreter) HandPresent() bool {
	return i.handPresent
}

// Process runs one frame through the chain. A nil hand means no hand was
// detected; a non-nil hand with fewer than 21 landmarks counts as a hand
// showing zero fingers.
func (i *Interpreter) Process(now time.Time, hand detector.Hand) Result {
	var res Result

	if hand == nil {
		i.loseHand(now, &res)
		res.Mode = i.modes.Mode()
		return res
	}

	res.HandPresent = true
	if !i.handPresent {
		i.handPresent = true
		res.emit(events.New(events.HandPresenceChanged, "true", "Hand detected", now))
	}

	if i.tuning != nil {
		i.smoother.SetWindow(i.tuning.Smoothing())
	}
	if i.clickCooldown > 0 {
		i.clickCooldown--
	}

	res.Count = CountFingers(hand)
	i.stabilizer.Push(res.Count)
	res.Stabilized = i.stabilizer.Current()

	if t, ok := i.modes.Update(now, res.Stabilized); ok {
		i.commit(t, &res)
	}

	res.Mode = i.modes.Mode()
	i.dispatch(now, hand, res.Mode, res.Stabilized, &res)
	return res
}

// Stop ends any open drag and clears transient state. The committed mode is kept.
func (i *Interpreter) Stop(now time.Time, reason string) Result {
	var res Result
	i.endDrag(now, reason, &res)
	i.stabilizer.Reset()
	i.smoother.Reset()
	i.handPresent = false
	i.clickCooldown = 0
	res.Mode = i.modes.Mode()
	return res
}

func (i *Interpreter) loseHand(now time.Time, res *Result) {
	if i.handPresent {
		i.handPresent = false
		res.emit(events.New(events.HandPresenceChanged, "false", "Hand lost", now))
	}
	i.stabilizer.Reset()
	i.smoother.Reset()
	i.endDrag(now, DragEndHandLost, res)
}

func (i *Interpreter) commit(t Transition, res *Result) {
	// Only an open palm keeps the button held
	enteringDrag := t.Selects() && t.To == ModeDrag
	if !enteringDrag {
		i.endDrag(t.At, DragEndModeChange, res)
	} else {
		i.smoother.Reset()
	}

	if t.Selects() {
		res.emit(events.New(events.ModeChanged, t.To.String(), "Mode: "+t.To.String(), t.At))
	}
}

func (i *Interpreter) dispatch(now time.Time, hand detector.Hand, mode Mode, count int, res *Result) {
	switch {
	case mode == ModeNavigation && count == 1:
		if p, ok := i.pointer(hand, detector.IndexTip); ok {
			res.act(moveTo(p))
		}

	case mode == ModeScrollUp && count == 2:
		res.act(input.Scroll(ScrollTick))

	case mode == ModeScrollDown && count == 3:
		res.act(input.Scroll(-ScrollTick))

	case mode == ModeClick && count == 4:
		if i.clickCooldown == 0 {
			res.act(input.Click())
			res.emit(events.New(events.ClickPerformed, "", "Click performed", now))
			i.clickCooldown = ClickCooldownFrames
		}

	case mode == ModeDrag && count == 5:
		p, ok := i.pointer(hand, detector.MiddleTip)
		if !ok {
			return
		}
		if i.drag.Begin(p) {
			res.act(input.MouseDown())
			res.emit(events.New(events.DragStarted, "", "Drag started", now))
		}
		res.act(moveTo(p))
	}
}

// pointer smooths the landmark at idx and maps it to the screen.
func (i *Interpreter) pointer(hand detector.Hand, idx int) (PointF, bool) {
	if !hand.Valid() {
		return PointF{}, false
	}
	p, ok := i.smoother.Push(hand[idx])
	if !ok {
		return PointF{}, false
	}
	return i.mapper.Map(p), true
}

func (i *Interpreter) endDrag(now time.Time, reason string, res *Result) {
	if !i.drag.End() {
		return
	}
	res.act(input.MouseUp())
	res.emit(events.New(events.DragEnded, reason, "Drag ended ("+reason+")", now))
}

func moveTo(p PointF) input.Action {
	return input.Move(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Snapshot is a point-in-time summary of interpreter state for status displays.
type Snapshot struct {
	Mode        string `json:"mode"`
	HandPresent bool   `json:"hand_present"`
	Dragging    bool   `json:"dragging"`
	Smoothing   int    `json:"smoothing"`
}

// Snapshot returns the current state summary.
func (i *Interpreter) Snapshot() Snapshot {
	return Snapshot{
		Mode:        i.modes.Mode().String(),
		HandPresent: i.handPresent,
		Dragging:    i.drag.Open(),
		Smoothing:   i.smoother.Window(),
	}
}
