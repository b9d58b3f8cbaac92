package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// periodicAxis folds one axis difference into [-half, half].
func periodicAxis(d, half, size float64) float64 {
	if d > half {
		d -= size
	} else if d < -half {
		d += size
	}
	return d
}

// PeriodicDelta returns the shortest toroidal displacement a - b
// in a cube of edge size. Inputs must lie inside the cube.
func PeriodicDelta(a, b r3.Vec, size float64) r3.Vec {
	half := size / 2
	return r3.Vec{
		X: periodicAxis(a.X-b.X, half, size),
		Y: periodicAxis(a.Y-b.Y, half, size),
		Z: periodicAxis(a.Z-b.Z, half, size),
	}
}

// needsWrap reports whether any axis of d spans more than half the world.
func needsWrap(d r3.Vec, half float64) bool {
	return d.X > half || d.X < -half ||
		d.Y > half || d.Y < -half ||
		d.Z > half || d.Z < -half
}

// WrapCoord folds a coordinate back into [-half, half] by whole world lengths.
// A single step covers every ordinary tick; larger jumps fall back to Mod.
func WrapCoord(c, half float64) float64 {
	size := 2 * half
	if c > half {
		c -= size
	} else if c < -half {
		c += size
	}
	if c >= -half && c <= half {
		return c
	}
	c = math.Mod(c+half, size)
	if c < 0 {
		c += size
	}
	return c - half
}

// WrapPosition applies WrapCoord on every axis.
func WrapPosition(p r3.Vec, half float64) r3.Vec {
	return r3.Vec{
		X: WrapCoord(p.X, half),
		Y: WrapCoord(p.Y, half),
		Z: WrapCoord(p.Z, half),
	}
}
