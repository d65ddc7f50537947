package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/simcore/ecs"
)

func main() {
	configPath := flag.String("config", "", "Path to a yaml config file.")
	duration := flag.Duration("duration", 0, "Total run duration (overrides config).")
	entityCount := flag.Int("entities", 0, "Initial number of entities (overrides config).")
	workers := flag.Int("workers", 0, "Worker pool size; 1 forces the single-threaded fallback (overrides config).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *entityCount > 0 {
		cfg.Entities = *entityCount
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *gcPauseMetrics {
		cfg.GCPauseMetrics = true
	}

	log.Info("starting ECS stress test",
		zap.Duration("duration", cfg.Duration),
		zap.Int("entities", cfg.Entities),
		zap.Int("workers", cfg.Workers),
	)

	// 1. Registry, world, systems
	registry := ecs.NewComponentRegistry()
	if err := registerStressComponents(registry, cfg.MaxInstances); err != nil {
		log.Fatal("register components", zap.Error(err))
	}

	world := ecs.NewWorld(registry, ecs.WithWorkers(cfg.Workers), ecs.WithLogger(log))
	if err := registerStressSystems(world); err != nil {
		log.Fatal("register systems", zap.Error(err))
	}

	plan, err := world.Plan()
	if err != nil {
		log.Fatal("plan", zap.Error(err))
	}
	log.Info("schedule planned", zap.Int("batches", len(plan)))

	// 2. Populate the world
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < cfg.Entities; i++ {
		if err := spawnRandomEntity(world, rng); err != nil {
			log.Fatal("spawn", zap.Error(err))
		}
	}
	log.Info("population complete", zap.Int("alive", world.Alive()))

	// 3. Run the simulation loop
	report := &Report{
		Duration:       cfg.Duration,
		Entities:       cfg.Entities,
		Workers:        cfg.Workers,
		Plan:           plan,
		GCPauseMetrics: cfg.GCPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime
	var totalFrames int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			dt := time.Since(lastFrameTime).Seconds()
			lastFrameTime = time.Now()

			frameStart := time.Now()
			if err := world.Step(dt); err != nil {
				log.Fatal("step", zap.Error(err))
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			totalFrames++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalFrames = totalFrames
	report.FrameTime.Finalize()
	report.SchedulerStats = world.Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished", zap.Int64("frames", totalFrames))

	// 4. Report to console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}
