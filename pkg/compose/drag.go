package compose

// DragController translates pointer movement in display coordinates into pan
// deltas in a format's canvas coordinate space. It is a two-state machine
// (idle / dragging) owned by the composition session; at most one drag is
// active at a time, scoped to a single (format, panel) pair.
//
// The surrounding event plumbing calls Begin on press, Update on every move
// (tracked globally so a drag survives the pointer leaving the element), and
// End on release anywhere. There is no separate cancel.
type DragController struct {
	session *Session

	active bool
	format int
	panel  int
	ratio  float64

	startX, startY float64
	basePanX       float64
	basePanY       float64
}

// NewDragController creates an idle controller bound to a session.
func NewDragController(session *Session) *DragController {
	return &DragController{session: session}
}

// Dragging reports whether a drag is in progress.
func (d *DragController) Dragging() bool {
	return d.active
}

// Target returns the (format, panel) of the active drag, or (-1, -1) when
// idle.
func (d *DragController) Target() (int, int) {
	if !d.active {
		return -1, -1
	}
	return d.format, d.panel
}

// Begin starts a drag from a press at (displayX, displayY) on the given
// format's canvas, displayed at displayedWidth on screen. The display
// coordinate is converted to canvas space (ratio = canvas width / displayed
// width) and resolved to a panel; a press on a divider, outside the strip, or
// without an active composition is a no-op and returns false. The panel's
// current pan is captured as the drag baseline.
func (d *DragController) Begin(format int, displayX, displayY, displayedWidth float64) bool {
	if d.active || displayedWidth <= 0 {
		return false
	}
	if !d.session.Composed() {
		return false
	}
	if format < 0 || format >= len(d.session.Formats()) {
		return false
	}

	ratio := float64(d.session.Formats()[format].Width) / displayedWidth
	panel := d.session.PanelAt(format, displayX*ratio)
	if panel < 0 {
		return false
	}

	adj, err := d.session.Adjustment(format, panel)
	if err != nil {
		return false
	}

	d.active = true
	d.format = format
	d.panel = panel
	d.ratio = ratio
	d.startX, d.startY = displayX, displayY
	d.basePanX, d.basePanY = adj.PanX, adj.PanY
	return true
}

// Update applies a pointer move at (displayX, displayY): the delta from the
// press point is converted to canvas space with the captured ratio, added to
// the baseline pan, and written through to the session, which re-renders only
// the affected format. The stored pan is not clamped here; render-time
// clamping saturates the visual result. A move while idle is a no-op.
func (d *DragController) Update(displayX, displayY float64) {
	if !d.active {
		return
	}

	panX := d.basePanX + (displayX-d.startX)*d.ratio
	panY := d.basePanY + (displayY-d.startY)*d.ratio

	// The key cannot go stale mid-drag: re-composition only happens through
	// uploads, which the interaction layer serializes with dragging.
	_ = d.session.SetPan(d.format, d.panel, panX, panY)
}

// End releases the drag and returns to idle. A release while idle is a no-op.
func (d *DragController) End() {
	d.active = false
}
