package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/config"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when loading a snapshot written by a different format version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot holds the complete simulation state for restarting a run.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	BoundsMin [2]float64 `json:"bounds_min"`
	BoundsMax [2]float64 `json:"bounds_max"`

	Tick  uint64 `json:"tick"`
	Label string `json:"label,omitempty"`

	Fluid config.FluidConfig `json:"fluid"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle's restartable state.
// Density and pressure are recomputed by the next step.
type ParticleState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
}

// NewParticleStates copies positions and velocities into dst.
func NewParticleStates(dst []ParticleState, positions, velocities []r2.Vec) []ParticleState {
	dst = dst[:0]
	for i, p := range positions {
		v := velocities[i]
		dst = append(dst, ParticleState{X: p.X, Y: p.Y, VelX: v.X, VelY: v.Y})
	}
	return dst
}

// Position returns the particle position as a vector.
func (s ParticleState) Position() r2.Vec { return r2.Vec{X: s.X, Y: s.Y} }

// Velocity returns the particle velocity as a vector.
func (s ParticleState) Velocity() r2.Vec { return r2.Vec{X: s.VelX, Y: s.VelY} }

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Label != "" {
		sanitized := strings.ReplaceAll(snapshot.Label, " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSnapshotVersion, snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
