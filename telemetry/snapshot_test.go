package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/config"
)

func TestSnapshotSaveLoad(t *testing.T) {
	// Create a temporary directory
	tmpDir := t.TempDir()

	// Create a test snapshot
	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   42,
		BoundsMin: [2]float64{-638, -358},
		BoundsMax: [2]float64{638, 358},
		Tick:      1000,
		Label:     "settled",
		Fluid: config.FluidConfig{
			SmoothingRadius: 20,
			ParticleMass:    1,
			GravityY:        -100,
		},
		Particles: []ParticleState{
			{X: 150, Y: 250, VelX: 0.5, VelY: -0.3},
			{X: -10, Y: 0, VelX: 0, VelY: 0},
		},
	}

	// Save the snapshot
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	// Load the snapshot
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	// Verify loaded data matches original
	if loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("RNGSeed mismatch: got %d, want %d", loaded.RNGSeed, snapshot.RNGSeed)
	}
	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if loaded.Fluid != snapshot.Fluid {
		t.Errorf("Fluid mismatch: got %+v, want %+v", loaded.Fluid, snapshot.Fluid)
	}
	if len(loaded.Particles) != len(snapshot.Particles) {
		t.Fatalf("Particles count mismatch: got %d, want %d", len(loaded.Particles), len(snapshot.Particles))
	}
	if loaded.Particles[0] != snapshot.Particles[0] {
		t.Errorf("Particle mismatch: got %+v, want %+v", loaded.Particles[0], snapshot.Particles[0])
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	// Test with label
	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Label:   "dam break",
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_dam_break.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	// Test without label
	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tick": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSnapshot(path)
	if !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("expected ErrSnapshotVersion, got %v", err)
	}
}

func TestNewParticleStates(t *testing.T) {
	positions := []r2.Vec{{X: 1, Y: 2}, {X: 3, Y: 4}}
	velocities := []r2.Vec{{X: -1}, {Y: 5}}

	states := NewParticleStates(nil, positions, velocities)
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[1].Position() != positions[1] || states[1].Velocity() != velocities[1] {
		t.Errorf("state mismatch: %+v", states[1])
	}

	// Reuses the destination
	again := NewParticleStates(states, positions[:1], velocities[:1])
	if len(again) != 1 || &again[0] != &states[0] {
		t.Error("expected destination slice to be reused")
	}
}
