// Initial entity placement using layered simplex noise. Trees and
// grass cluster where their noise layers run high; sticks scatter
// uniformly; a single bonfire sits near the center. Placement is
// read-only input to the orchestrator: nothing here runs after start.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"wildmind/internal/config"
)

const placementStep = 4.0

// Generate creates a world populated from the tuning's placement
// parameters. Deterministic for a fixed non-zero seed.
func Generate(cfg config.World) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	treeNoise := opensimplex.NewNormalized(seed)
	grassNoise := opensimplex.NewNormalized(seed + 1)

	w := New(cfg.Width, cfg.Height)

	for x := placementStep; x < cfg.Width; x += placementStep {
		for y := placementStep; y < cfg.Height; y += placementStep {
			// Jitter within the cell so placement doesn't read as a grid.
			pos := Vec2{
				X: x + (rng.Float64()-0.5)*placementStep,
				Y: y + (rng.Float64()-0.5)*placementStep,
			}
			switch {
			case treeNoise.Eval2(x*0.05, y*0.05) > 1-cfg.TreeDensity*0.5:
				tree := NewEntity(KindTree, w.Clamp(pos))
				for i := 0; i < 1+rng.Intn(3); i++ {
					tree.GiveItem(Item{Kind: KindApple})
				}
				w.Add(tree)
			case grassNoise.Eval2(x*0.08, y*0.08) > 1-cfg.GrassDensity*0.4:
				grass := NewEntity(KindGrass, w.Clamp(pos))
				for i := 0; i < 1+rng.Intn(2); i++ {
					grass.GiveItem(Item{Kind: KindBerry})
				}
				w.Add(grass)
			}
		}
	}

	for i := 0; i < cfg.StickCount; i++ {
		stick := NewEntity(KindStick, Vec2{
			X: rng.Float64() * cfg.Width,
			Y: rng.Float64() * cfg.Height,
		})
		stick.GiveItem(Item{Kind: KindStick})
		w.Add(stick)
	}

	bonfire := NewEntity(KindBonfire, Vec2{X: cfg.Width / 2, Y: cfg.Height / 2})
	bonfire.MaxFuel = cfg.BonfireMaxFuel
	bonfire.Fuel = cfg.BonfireMaxFuel / 2
	w.Add(bonfire)

	return w
}
