package components

// ParticleRef links a render entity to its particle index.
type ParticleRef struct {
	Index int
}

// ScreenPos is the projected screen position of a particle.
type ScreenPos struct {
	X, Y float32
}

// Tint is the display colour of a particle.
type Tint struct {
	R, G, B, A uint8
}
