package compose

import (
	"bytes"
	"testing"
)

func composedWithDrag(t *testing.T) (*Session, *DragController) {
	t.Helper()
	session := composeTwo(t, 0.5, 0.5)
	return session, NewDragController(session)
}

func TestBeginRequiresComposition(t *testing.T) {
	session := newTestSession()
	drag := NewDragController(session)

	if drag.Begin(0, 10, 10, 800) {
		t.Error("Begin must be a no-op without an active composition")
	}
	if drag.Dragging() {
		t.Error("Controller should remain idle")
	}
}

func TestBeginResolvesPanel(t *testing.T) {
	session, drag := composedWithDrag(t)

	slotW := float64(session.SlotWidth(0))
	stride := slotW + float64(DefaultDivider.Width)
	canvasW := float64(session.Formats()[0].Width)

	tests := []struct {
		name       string
		displayX   float64
		displayedW float64
		ok         bool
		panel      int
	}{
		{"first panel at full size", slotW / 2, canvasW, true, 0},
		{"second panel at full size", stride + 10, canvasW, true, 1},
		{"first panel at half size", slotW / 4, canvasW / 2, true, 0},
		{"divider at full size", slotW + 2, canvasW, false, -1},
		{"divider at half size", (slotW + 2) / 2, canvasW / 2, false, -1},
		{"outside the strip", canvasW + 50, canvasW, false, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			drag.End()

			ok := drag.Begin(0, tc.displayX, 100, tc.displayedW)
			if ok != tc.ok {
				t.Fatalf("Begin = %v; want %v", ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			_, panel := drag.Target()
			if panel != tc.panel {
				t.Errorf("Resolved panel %d; want %d", panel, tc.panel)
			}
		})
	}
}

func TestDragDeltaScalesWithDisplayRatio(t *testing.T) {
	session, drag := composedWithDrag(t)

	// Canvas displayed at half its logical resolution: a 50px display drag
	// must become a 100px logical pan delta.
	displayedW := float64(session.Formats()[0].Width) / 2

	if !drag.Begin(0, 20, 20, displayedW) {
		t.Fatal("Begin failed")
	}
	drag.Update(70, 20)

	adj, err := session.Adjustment(0, 0)
	if err != nil {
		t.Fatalf("Adjustment failed: %v", err)
	}
	if adj.PanX != 100 {
		t.Errorf("PanX = %f; want 100", adj.PanX)
	}
	if adj.PanY != 0 {
		t.Errorf("PanY = %f; want 0", adj.PanY)
	}
}

func TestDragBaselineAccumulates(t *testing.T) {
	session, drag := composedWithDrag(t)
	canvasW := float64(session.Formats()[0].Width)

	// First drag moves the panel; a second drag starts from the stored pan.
	if !drag.Begin(0, 10, 10, canvasW) {
		t.Fatal("first Begin failed")
	}
	drag.Update(40, 10)
	drag.End()

	if !drag.Begin(0, 10, 10, canvasW) {
		t.Fatal("second Begin failed")
	}
	drag.Update(15, 35)
	drag.End()

	adj, err := session.Adjustment(0, 0)
	if err != nil {
		t.Fatalf("Adjustment failed: %v", err)
	}
	if adj.PanX != 35 || adj.PanY != 25 {
		t.Errorf("Pan = (%f,%f); want (35,25)", adj.PanX, adj.PanY)
	}
}

func TestDragOnlyAffectsItsFormat(t *testing.T) {
	session, drag := composedWithDrag(t)

	before := clonedOutput(t, session, 0)

	// Drag on the second format.
	canvasW := float64(session.Formats()[1].Width)
	if !drag.Begin(1, 30, 30, canvasW) {
		t.Fatal("Begin failed")
	}
	drag.Update(130, 30)
	drag.End()

	after, err := session.Output(0)
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if !bytes.Equal(before.Pix, after.Pix) {
		t.Error("Dragging format 1 changed format 0's rendered output")
	}

	adj, err := session.Adjustment(0, 0)
	if err != nil {
		t.Fatalf("Adjustment failed: %v", err)
	}
	if !adj.IsDefault() {
		t.Errorf("Format 0 adjustment = %+v; want default", adj)
	}
}

func TestUpdateWhileIdleIsNoop(t *testing.T) {
	session, drag := composedWithDrag(t)

	drag.Update(500, 500)

	adj, err := session.Adjustment(0, 0)
	if err != nil {
		t.Fatalf("Adjustment failed: %v", err)
	}
	if !adj.IsDefault() {
		t.Errorf("Idle Update wrote pan %+v", adj)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	session, drag := composedWithDrag(t)
	canvasW := float64(session.Formats()[0].Width)

	drag.End()
	if drag.Dragging() {
		t.Error("End while idle should stay idle")
	}

	if !drag.Begin(0, 10, 10, canvasW) {
		t.Fatal("Begin failed")
	}
	drag.End()
	drag.End()
	if drag.Dragging() {
		t.Error("Controller should be idle after release")
	}

	f, p := drag.Target()
	if f != -1 || p != -1 {
		t.Errorf("Idle Target = (%d,%d); want (-1,-1)", f, p)
	}
}

func TestBeginWhileDraggingIsNoop(t *testing.T) {
	session, drag := composedWithDrag(t)
	canvasW := float64(session.Formats()[0].Width)
	_ = session

	if !drag.Begin(0, 10, 10, canvasW) {
		t.Fatal("Begin failed")
	}
	if drag.Begin(0, 900, 10, canvasW) {
		t.Error("Begin during an active drag must be rejected")
	}

	_, panel := drag.Target()
	if panel != 0 {
		t.Errorf("Active drag retargeted to panel %d", panel)
	}
}
