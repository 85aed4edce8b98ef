package inspector

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/config"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Tag
	}{
		{"", Tag{Widget: WidgetAuto, Max: 1}},
		{"bar", Tag{Widget: WidgetBar, Max: 1}},
		{"bar,max:200", Tag{Widget: WidgetBar, Max: 200}},
		{"slider,min:-5,max:5,fmt:%.0f", Tag{Widget: WidgetSlider, Min: -5, Max: 5, Format: "%.0f"}},
		{"slider, min:2 ,max:oops", Tag{Widget: WidgetSlider, Min: 2, Max: 1}},
		{"skip", Tag{Widget: WidgetSkip, Max: 1}},
		{"mystery,nocolon", Tag{Widget: WidgetAuto, Max: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := ParseTag(tt.tag); got != tt.want {
				t.Errorf("ParseTag(%q) = %+v, want %+v", tt.tag, got, tt.want)
			}
		})
	}
}

type sample struct {
	Ratio   float64 `inspect:"slider,min:0.5,max:2"`
	Count   int
	Enabled bool
	Hidden  float64 `inspect:"skip"`
	private float64
}

func TestExtractFields(t *testing.T) {
	fields := ExtractFields(&sample{Ratio: 1.5, Count: 3, Enabled: true})
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3: %+v", len(fields), fields)
	}

	if fields[0].Name != "Ratio" || fields[0].Tag.Widget != WidgetSlider || fields[0].Value != 1.5 {
		t.Errorf("unexpected ratio field %+v", fields[0])
	}
	if fields[0].Tag.Min != 0.5 || fields[0].Tag.Max != 2 {
		t.Errorf("range %v..%v", fields[0].Tag.Min, fields[0].Tag.Max)
	}
	if fields[1].Tag.Widget != WidgetLabel || fields[2].Tag.Widget != WidgetBool {
		t.Errorf("auto widgets: %v, %v", fields[1].Tag.Widget, fields[2].Tag.Widget)
	}
	if ExtractFields(42) != nil {
		t.Error("non-struct should yield no fields")
	}
}

func TestSetFloat(t *testing.T) {
	s := &sample{}
	fields := ExtractFields(s)

	if err := SetFloat(s, fields[0].Index, 1.25); err != nil || s.Ratio != 1.25 {
		t.Errorf("ratio = %v, err %v", s.Ratio, err)
	}
	if err := SetFloat(s, fields[1].Index, 7.9); err != nil || s.Count != 7 {
		t.Errorf("count = %v, err %v", s.Count, err)
	}
	if err := SetFloat(s, fields[2].Index, 1); err == nil {
		t.Error("expected error setting a bool field")
	}
	if err := SetFloat(*s, 0, 1); err == nil {
		t.Error("expected error for non-pointer target")
	}
	if err := SetFloat(s, 99, 1); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

// Every fluid parameter is editable and its default sits inside its slider range.
func TestFluidConfigSliders(t *testing.T) {
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}

	fields := ExtractFields(&cfg.Fluid)
	if len(fields) != 14 {
		t.Fatalf("got %d fluid fields, want 14", len(fields))
	}
	for _, f := range fields {
		if f.Tag.Widget != WidgetSlider {
			t.Errorf("%s: widget %v, want slider", f.Name, f.Tag.Widget)
			continue
		}
		v, _ := Float(f.Value)
		lo, hi := f.Tag.Min, f.Tag.Max
		if lo >= hi {
			t.Errorf("%s: empty range %v..%v", f.Name, lo, hi)
		}
		if v < lo || v > hi {
			t.Errorf("%s: default %v outside slider range %v..%v", f.Name, v, lo, hi)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(0.123456, ""); got != "0.12" {
		t.Errorf("default float format: %q", got)
	}
	if got := FormatValue(0.123456, "%.4f"); got != "0.1235" {
		t.Errorf("custom format: %q", got)
	}
	if got := FormatValue(12, ""); got != "12" {
		t.Errorf("int format: %q", got)
	}
}

func TestFloat(t *testing.T) {
	for _, v := range []any{float32(2), 2.0, 2, int32(2), uint32(2), uint64(2)} {
		if f, ok := Float(v); !ok || f != 2 {
			t.Errorf("Float(%T) = %v, %v", v, f, ok)
		}
	}
	if _, ok := Float("2"); ok {
		t.Error("string converted to float")
	}
}

type fakeSource struct {
	pos, vel []r2.Vec
	rho, p   []float64
}

func (f fakeSource) Positions() []r2.Vec  { return f.pos }
func (f fakeSource) Velocities() []r2.Vec { return f.vel }
func (f fakeSource) Densities() []float64 { return f.rho }
func (f fakeSource) Pressures() []float64 { return f.p }
func (f fakeSource) Neighbors(pos r2.Vec, radius float64) []int {
	var out []int
	for i, q := range f.pos {
		if r2.Norm2(r2.Sub(q, pos)) <= radius*radius {
			out = append(out, i)
		}
	}
	return out
}

func TestDescribeAndPick(t *testing.T) {
	src := fakeSource{
		pos: []r2.Vec{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 100, Y: 0}},
		vel: []r2.Vec{{X: 3, Y: 4}, {}, {}},
		rho: []float64{0.5, 0.25, 0.125},
		p:   []float64{10, 0, -1},
	}

	info, ok := Describe(src, 0, 20, 0.25)
	if !ok {
		t.Fatal("Describe failed for valid index")
	}
	if info.Speed != 5 || info.DensityRatio != 2 || info.Neighbors != 1 || info.Pressure != 10 {
		t.Errorf("unexpected info %+v", info)
	}
	if _, ok := Describe(src, 3, 20, 0.25); ok {
		t.Error("Describe should fail out of range")
	}

	if i, ok := Pick(src.pos, r2.Vec{X: 4, Y: 1}, 10); !ok || i != 1 {
		t.Errorf("Pick = %d, %v; want 1", i, ok)
	}
	if _, ok := Pick(src.pos, r2.Vec{X: 50, Y: 50}, 10); ok {
		t.Error("Pick should miss far from every particle")
	}

	ins := NewInspector(1280, 720)
	ins.Select(src.pos, r2.Vec{X: 99}, 5)
	if i, ok := ins.Selected(); !ok || i != 2 {
		t.Errorf("Selected = %d, %v", i, ok)
	}
	ins.Deselect()
	if _, ok := ins.Selected(); ok {
		t.Error("still selected after Deselect")
	}
}
