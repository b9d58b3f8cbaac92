package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	count := flag.Int("particles", 0, "Initial particle count (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	serial := flag.Bool("serial", false, "Run the force pass on the calling goroutine only")
	paced := flag.Bool("paced", false, "Pace ticks at screen.target_fps")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	particles := cfg.Population.Count
	if *count > 0 {
		particles = *count
	}

	if err := run(cfg, runOptions{
		seed:      rngSeed,
		particles: particles,
		maxTicks:  *maxTicks,
		serial:    *serial,
		paced:     *paced,
		game: game.Options{
			LogStats:  *logStats,
			OutputDir: *outputDir,
		},
	}); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	seed      int64
	particles int
	maxTicks  int
	serial    bool
	paced     bool
	game      game.Options
}

func run(cfg *config.Config, opts runOptions) error {
	g, err := game.NewGameWithOptions(cfg, opts.game)
	if err != nil {
		return err
	}
	defer g.Unload()

	if err := g.Initialize(opts.particles, opts.seed); err != nil {
		return err
	}

	if !opts.serial {
		if err := g.StartWorkers(); err != nil {
			if !errors.Is(err, game.ErrWorkerStart) {
				return err
			}
			slog.Warn("falling back to serial scheduler", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pace <-chan time.Time
	if opts.paced && cfg.Screen.TargetFPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.Screen.TargetFPS))
		defer ticker.Stop()
		pace = ticker.C
	}

	slog.Info("starting simulation",
		"seed", opts.seed,
		"particles", g.ParticleCount(),
		"types", len(g.Types()),
		"parallel", g.Running(),
		"max_ticks", opts.maxTicks,
	)

	for {
		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", g.Tick())
			return nil
		}

		if err := g.AdvanceTick(); err != nil {
			return err
		}
		g.RecordFrame()

		if opts.maxTicks > 0 && int(g.Tick()) >= opts.maxTicks {
			slog.Info("max ticks reached",
				"tick", g.Tick(),
				"particles", g.ParticleCount(),
				"dropped", g.Dropped(),
				"perf", g.PerfStats(),
			)
			return nil
		}
	}
}
