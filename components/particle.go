// Package components defines the plain data carried by the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Particle is one simulated body.
// Its state is fully described by position, velocity and type;
// nothing else carries over between ticks.
type Particle struct {
	Pos  r3.Vec // World position in [-1, 1]^3
	Vel  r3.Vec // Displacement applied per tick
	Type uint8  // Index into the type table
}

// Color is an RGB triple in [0, 1], as consumed by the renderer.
type Color struct {
	R, G, B float32
}

// TypeInfo describes one particle species for display.
type TypeInfo struct {
	Name  string
	Color Color
}
