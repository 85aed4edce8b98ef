package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestCamera() *Camera {
	return New(1280, 720, r2.Vec{X: -640, Y: -360}, r2.Vec{X: 640, Y: 360})
}

func TestNew(t *testing.T) {
	cam := newTestCamera()

	// Should be centered on world
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected fitting zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenIsYUp(t *testing.T) {
	cam := newTestCamera()

	tests := []struct {
		name   string
		wx, wy float32
		sx, sy float32
	}{
		{"center", 0, 0, 640, 360},
		{"top-left corner", -640, 360, 0, 0},
		{"bottom-right corner", 640, -360, 1280, 720},
		{"above center", 0, 100, 640, 260},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := cam.WorldToScreen(tt.wx, tt.wy)
			if math.Abs(float64(sx-tt.sx)) > 0.01 || math.Abs(float64(sy-tt.sy)) > 0.01 {
				t.Errorf("WorldToScreen(%v, %v) = (%v, %v), want (%v, %v)", tt.wx, tt.wy, sx, sy, tt.sx, tt.sy)
			}
		})
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(2.5)
	cam.Pan(120, -40)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		p := cam.Unproject(tc.sx, tc.sy)
		sx, sy := cam.Project(p)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestPanStaysInsideWorld(t *testing.T) {
	cam := newTestCamera()

	// Dragging down the screen moves the view toward lower world y
	cam.Pan(0, 50)
	if cam.Y != -50 {
		t.Errorf("expected Y -50 after pan, got %f", cam.Y)
	}

	cam.Pan(-5000, 5000)
	if cam.X != cam.MinX || cam.Y != cam.MinY {
		t.Errorf("expected center clamped to (%f, %f), got (%f, %f)", cam.MinX, cam.MinY, cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := newTestCamera()

	if cam.MinZoom != 0.5 || cam.MaxZoom != 8 {
		t.Fatalf("zoom limits %f..%f, want 0.5..8", cam.MinZoom, cam.MaxZoom)
	}

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.ZoomBy(100) // Above max
	if cam.Zoom != 8 {
		t.Errorf("expected zoom clamped to 8, got %f", cam.Zoom)
	}
}

func TestFitZoomUsesLimitingDimension(t *testing.T) {
	// World is relatively taller than the viewport
	cam := New(800, 600, r2.Vec{X: 0, Y: 0}, r2.Vec{X: 400, Y: 600})
	if cam.Zoom != 1 {
		t.Errorf("expected zoom 1, got %f", cam.Zoom)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minY != 0 || maxY != 600 {
		t.Errorf("vertical extent %f..%f should match the world", minY, maxY)
	}
	if minX > 0 || maxX < 400 {
		t.Errorf("horizontal extent %f..%f should cover the world", minX, maxX)
	}
}

func TestResizeReclampsZoom(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(cam.MaxZoom)

	cam.Resize(640, 360)
	if cam.MaxZoom != 4 || cam.Zoom != 4 {
		t.Errorf("after resize max=%f zoom=%f, want 4", cam.MaxZoom, cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(2)

	// Visible range in world coords: (-320, -180) to (320, 180)
	if !cam.IsVisible(0, 0, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(600, 300, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(400, 0, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestReset(t *testing.T) {
	cam := newTestCamera()
	cam.X = 500
	cam.Y = 200
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected position (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
