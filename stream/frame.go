// Package stream serves the simulation over a websocket: binary frames of
// quantized particle positions out, pointer interaction in.
package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// Frame layout, little endian:
//
//	magic   [4]byte "SPH1"
//	tick    uint64
//	bounds  4 x float32 (min x, min y, max x, max y)
//	count   uint32
//	points  count x (x uint16, y uint16, speed uint8)
//
// Coordinates are quantized across the bounds, y up. Speed is the fraction of
// the frame's max speed.
const (
	headerSize = 4 + 8 + 16 + 4
	pointSize  = 5
	quantMax   = math.MaxUint16
)

var frameMagic = [4]byte{'S', 'P', 'H', '1'}

var (
	ErrShortFrame  = errors.New("frame too short")
	ErrFrameMagic  = errors.New("bad frame magic")
	ErrPointerMode = errors.New("unknown pointer mode")
)

// Point is one decoded particle.
type Point struct {
	Pos   r2.Vec
	Speed float64 // fraction of max speed, in [0, 1]
}

// Frame is a decoded broadcast frame.
type Frame struct {
	Tick   uint64
	Bounds components.Bounds
	Points []Point
}

// EncodeFrame appends the wire form of a particle set to dst.
func EncodeFrame(dst []byte, tick uint64, b components.Bounds, positions, velocities []r2.Vec, maxSpeed float64) []byte {
	dst = append(dst, frameMagic[:]...)
	dst = binary.LittleEndian.AppendUint64(dst, tick)
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y} {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(positions)))

	w, h := b.Width(), b.Height()
	for i, p := range positions {
		dst = binary.LittleEndian.AppendUint16(dst, quantize((p.X-b.Min.X)/w))
		dst = binary.LittleEndian.AppendUint16(dst, quantize((p.Y-b.Min.Y)/h))

		var speed float64
		if maxSpeed > 0 {
			speed = r2.Norm(velocities[i]) / maxSpeed
		}
		dst = append(dst, uint8(quantize(speed)>>8))
	}
	return dst
}

// quantize maps [0, 1] onto the full uint16 range. Out of range and NaN clamp.
func quantize(t float64) uint16 {
	if !(t > 0) {
		return 0
	}
	if t >= 1 {
		return quantMax
	}
	return uint16(math.Round(t * quantMax))
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < headerSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if [4]byte(data[:4]) != frameMagic {
		return Frame{}, ErrFrameMagic
	}

	le := binary.LittleEndian
	f32 := func(off int) float64 { return float64(math.Float32frombits(le.Uint32(data[off:]))) }

	var f Frame
	f.Tick = le.Uint64(data[4:])
	f.Bounds = components.Bounds{
		Min: r2.Vec{X: f32(12), Y: f32(16)},
		Max: r2.Vec{X: f32(20), Y: f32(24)},
	}
	count := int(le.Uint32(data[28:]))
	if want := headerSize + count*pointSize; len(data) < want {
		return Frame{}, fmt.Errorf("%w: %d points need %d bytes, got %d", ErrShortFrame, count, want, len(data))
	}

	w, h := f.Bounds.Width(), f.Bounds.Height()
	f.Points = make([]Point, count)
	for i := range f.Points {
		off := headerSize + i*pointSize
		f.Points[i] = Point{
			Pos: r2.Vec{
				X: f.Bounds.Min.X + float64(le.Uint16(data[off:]))/quantMax*w,
				Y: f.Bounds.Min.Y + float64(le.Uint16(data[off+2:]))/quantMax*h,
			},
			Speed: float64(data[off+4]) / math.MaxUint8,
		}
	}
	return f, nil
}

// Pointer is the JSON message a client sends while interacting. U and V are
// fractions of the view, origin top left, matching canvas coordinates.
type Pointer struct {
	U    float64 `json:"u"`
	V    float64 `json:"v"`
	Mode string  `json:"mode"` // "attract", "repel" or "release"
}

// DecodePointer parses a pointer message into an interaction in world space.
func DecodePointer(msg []byte, b components.Bounds) (components.Interaction, error) {
	var p Pointer
	if err := json.Unmarshal(msg, &p); err != nil {
		return components.Interaction{}, fmt.Errorf("decode pointer: %w", err)
	}

	var sign components.InteractionSign
	switch p.Mode {
	case "attract":
		sign = components.InteractionAttract
	case "repel":
		sign = components.InteractionRepel
	case "release", "":
		return components.Interaction{}, nil
	default:
		return components.Interaction{}, fmt.Errorf("%w: %q", ErrPointerMode, p.Mode)
	}

	u := min(max(p.U, 0), 1)
	v := min(max(p.V, 0), 1)
	return components.Interaction{
		Position: r2.Vec{X: b.Min.X + u*b.Width(), Y: b.Max.Y - v*b.Height()},
		Active:   true,
		Sign:     sign,
	}, nil
}
