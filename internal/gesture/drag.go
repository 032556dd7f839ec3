package gesture

// DragSession tracks whether the mouse button is held for a drag.
// At most one session is open; Begin and End are idempotent.
type DragSession struct {
	open  bool
	start PointF
}

// Begin opens the session at start and reports whether it was newly opened.
func (d *DragSession) Begin(start PointF) bool {
	if d.open {
		return false
	}
	d.open = true
	d.start = start
	return true
}

// End closes the session and reports whether it was open.
func (d *DragSession) End() bool {
	if !d.open {
		return false
	}
	d.open = false
	d.start = PointF{}
	return true
}

// Open reports whether a drag is in progress.
func (d *DragSession) Open() bool {
	return d.open
}

// Start returns the screen position where the drag began.
func (d *DragSession) Start() PointF {
	return d.start
}
