package systems

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/plife/components"
	"github.com/pthm-cable/plife/config"
)

// minAcceptance keeps clustered sampling from stalling in empty noise regions.
const minAcceptance = 0.01

// SeedParticles creates count particles with random positions inside the
// world cube, random types and zero velocity. The sequence depends only on seed.
func SeedParticles(pop config.PopulationConfig, count, numTypes int, worldSize float64, seed int64) []components.Particle {
	rng := rand.New(rand.NewSource(seed))
	half := worldSize / 2

	randomPos := func() r3.Vec {
		return r3.Vec{
			X: rng.Float64()*worldSize - half,
			Y: rng.Float64()*worldSize - half,
			Z: rng.Float64()*worldSize - half,
		}
	}

	accept := func(r3.Vec) bool { return true }
	if pop.Distribution == config.DistributionClustered {
		noise := perlin.NewPerlin(pop.Noise.Alpha, pop.Noise.Beta, pop.Noise.Octaves, seed)
		threshold := max(pop.Noise.Threshold, minAcceptance)
		accept = func(p r3.Vec) bool {
			s := pop.Noise.Scale
			// Noise3D is roughly in [-1, 1]; map to an acceptance probability
			density := (noise.Noise3D(p.X*s, p.Y*s, p.Z*s) + 1) / 2
			return rng.Float64() < max(density, threshold)
		}
	}

	particles := make([]components.Particle, 0, count)
	for len(particles) < count {
		pos := randomPos()
		if !accept(pos) {
			continue
		}
		particles = append(particles, components.Particle{
			Pos:  pos,
			Type: uint8(rng.Intn(numTypes)),
		})
	}
	return particles
}
