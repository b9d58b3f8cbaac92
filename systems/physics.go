package systems

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/plife/components"
	"github.com/pthm-cable/plife/config"
)

// ForceParams holds the constants of the force laws and the integrator.
type ForceParams struct {
	CenterForce    float64 // Constant-magnitude pull toward the origin
	CenterEpsilon  float64 // No central force at squared radius <= this
	BaseRadius     float64
	RadiusZScale   float64 // radius = BaseRadius + (z+half)*RadiusZScale
	CollisionScale float64 // collision threshold = (ri+rj)^2 * CollisionScale
	CollisionForce float64
	MaxDistSq      float64 // Interaction cutoff
	MinDistSq      float64 // Numerical floor
	Damping        float64
	Timestep       float64
	WorldSize      float64
}

// ForceParamsFromConfig reads force constants from configuration.
func ForceParamsFromConfig(cfg *config.Config) ForceParams {
	p := cfg.Physics
	return ForceParams{
		CenterForce:    p.CenterForce,
		CenterEpsilon:  p.CenterEpsilon,
		BaseRadius:     p.BaseRadius,
		RadiusZScale:   p.RadiusZScale,
		CollisionScale: p.CollisionScale,
		CollisionForce: p.CollisionForce,
		MaxDistSq:      p.MaxDistSq,
		MinDistSq:      p.MinDistSq,
		Damping:        p.Damping,
		Timestep:       p.Timestep,
		WorldSize:      cfg.World.WorldSize,
	}
}

// Partition selects the cells a pass is responsible for.
// A nil Partition selects every cell.
type Partition func(ix, iy, iz int) bool

// ParityPartition selects cells whose index sum has the given parity (0 or 1).
func ParityPartition(parity int) Partition {
	return func(ix, iy, iz int) bool {
		return (ix+iy+iz)%2 == parity
	}
}

// ForceSystem computes per-particle forces and integrates one tick.
// It holds no per-tick state and is safe for concurrent use by multiple passes.
type ForceSystem struct {
	params     ForceParams
	half       float64
	attraction *AttractionMatrix
}

// NewForceSystem creates a force system.
func NewForceSystem(params ForceParams, attraction *AttractionMatrix) *ForceSystem {
	return &ForceSystem{
		params:     params,
		half:       params.WorldSize / 2,
		attraction: attraction,
	}
}

// Attraction returns the coefficient table.
func (fs *ForceSystem) Attraction() *AttractionMatrix {
	return fs.attraction
}

// Radius returns the size of a particle at height z.
// The same heuristic sizes particles on screen.
func (fs *ForceSystem) Radius(z float64) float64 {
	return fs.params.BaseRadius + (z+fs.half)*fs.params.RadiusZScale
}

// CentralForce returns the constant-magnitude pull toward the origin.
// At (or within CenterEpsilon of) the origin it is zero.
func (fs *ForceSystem) CentralForce(pos r3.Vec) r3.Vec {
	dir := r3.Scale(-1, pos)
	d2 := r3.Norm2(dir)
	if d2 <= fs.params.CenterEpsilon {
		return r3.Vec{}
	}
	return r3.Scale(fs.params.CenterForce/math.Sqrt(d2), dir)
}

// PairMagnitude returns the signed magnitude of the force q exerts on p
// and whether the pair is in the collision regime.
// Collision magnitudes are non-negative and push p away from q.
// Otherwise the magnitude carries the sign of coef: positive pulls p toward q.
func (fs *ForceSystem) PairMagnitude(coef, d2, ri, rj float64) (mag float64, collision bool) {
	minDist := ri + rj
	threshold := minDist * minDist * fs.params.CollisionScale
	dist := math.Sqrt(d2)
	if d2 < threshold {
		st := math.Sqrt(threshold)
		intensity := (st - dist) / st
		return fs.params.CollisionForce * intensity / d2, true
	}
	return coef / dist, false
}

// PairForce returns the force q exerts on p given delta = p - q (toroidally corrected)
// and d2 = |delta|^2. Pairs outside (MinDistSq, MaxDistSq] contribute nothing.
func (fs *ForceSystem) PairForce(p, q *components.Particle, delta r3.Vec, d2 float64) r3.Vec {
	if d2 > fs.params.MaxDistSq || d2 < fs.params.MinDistSq {
		return r3.Vec{}
	}
	coef := fs.attraction.Coefficient(int(p.Type), int(q.Type))
	mag, collision := fs.PairMagnitude(coef, d2, fs.Radius(p.Pos.Z), fs.Radius(q.Pos.Z))
	if collision {
		return r3.Scale(mag, delta)
	}
	// delta points from q to p, so a positive coef must scale -delta to pull p toward q.
	return r3.Scale(-mag, delta)
}

// NetForce sums the central force and every neighbor interaction on
// particle i of cell idx in src.
func (fs *ForceSystem) NetForce(src *Grid, idx, i int) r3.Vec {
	p := &src.CellAt(idx)[i]
	force := fs.CentralForce(p.Pos)

	ix, iy, iz := src.Coords(idx)
	src.Neighbors(ix, iy, iz, func(nIdx int, cell []components.Particle) {
		for j := range cell {
			if nIdx == idx && j == i {
				continue
			}
			q := &cell[j]

			delta := r3.Sub(p.Pos, q.Pos)
			if needsWrap(delta, fs.half) {
				delta = PeriodicDelta(p.Pos, q.Pos, fs.params.WorldSize)
			}
			d2 := r3.Norm2(delta)
			force = r3.Add(force, fs.PairForce(p, q, delta, d2))
		}
	})

	return force
}

// Integrate applies damping, the force impulse and periodic wraparound.
func (fs *ForceSystem) Integrate(p components.Particle, force r3.Vec) components.Particle {
	p.Vel = r3.Add(r3.Scale(fs.params.Damping, p.Vel), r3.Scale(fs.params.Timestep, force))
	p.Pos = WrapPosition(r3.Add(p.Pos, p.Vel), fs.half)
	return p
}

// ComputeCells advances every particle of the selected cells of src by one tick
// and stores the result in dst at its new cell. src is only read.
// Particles dst cannot hold are dropped, logged and counted.
func (fs *ForceSystem) ComputeCells(src, dst *Grid, part Partition) (dropped int) {
	n := src.Size()
	for ix := 0; ix < n; ix++ {
		for iy := 0; iy < n; iy++ {
			for iz := 0; iz < n; iz++ {
				if part != nil && !part(ix, iy, iz) {
					continue
				}
				idx := src.Index(ix, iy, iz)
				cell := src.CellAt(idx)
				for i := range cell {
					updated := fs.Integrate(cell[i], fs.NetForce(src, idx, i))
					if err := dst.Add(updated); err != nil {
						dropped++
						LogDrop(err)
					}
				}
			}
		}
	}
	return dropped
}

// LogDrop reports a particle lost to storage exhaustion.
func LogDrop(err error) {
	if errors.Is(err, ErrCellFull) {
		slog.Warn("particle dropped", "error", err)
		return
	}
	slog.Error("particle insert failed", "error", err)
}
