package ecs

import (
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	BatchCount      int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system. Recorded
// for inspection only; scheduling decisions never depend on them.
type SystemStats struct {
	Name              string
	ExecutionCount    int64
	EntitiesProcessed int64
	MinDuration       time.Duration
	MaxDuration       time.Duration
	AvgDuration       time.Duration
	LastDuration      time.Duration
	TotalDuration     time.Duration
}

type systemStatsInternal struct {
	name              string
	executionCount    int64
	entitiesProcessed int64
	minDuration       time.Duration
	maxDuration       time.Duration
	totalDuration     time.Duration
	lastDuration      time.Duration
}

// scheduler owns the registered system set and the cached execution plan.
// The plan is recomputed only when the system set changes; execution reuses
// it every frame.
type scheduler struct {
	world   *World
	workers int
	log     *zap.Logger

	nodes []*systemNode
	stats []*systemStatsInternal

	plan      [][]*systemNode
	planDirty bool
}

func newScheduler(world *World, workers int, log *zap.Logger) *scheduler {
	return &scheduler{
		world:   world,
		workers: workers,
		log:     log,
	}
}

// register validates the system's declared access and adds it to the set,
// initializing any Query fields. The cached plan is invalidated.
func (s *scheduler) register(name string, system System, reqs ThreadingRequirements) error {
	if name == "" {
		name = systemName(system)
	}

	for _, node := range s.nodes {
		if node.name == name {
			return ErrDuplicateSystem
		}
	}

	if err := reqs.validate(); err != nil {
		return err
	}

	s.initializeQueries(system)

	s.nodes = append(s.nodes, &systemNode{
		name:  name,
		sys:   system,
		reqs:  reqs,
		order: len(s.nodes),
	})
	s.stats = append(s.stats, &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})
	s.planDirty = true
	return nil
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// initializeQueries walks the system struct and calls Init(world) on every
// Query field, so systems declare queries without explicit wiring.
func (s *scheduler) initializeQueries(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() != reflect.Struct {
			continue
		}

		if strings.HasPrefix(field.Type().Name(), "Query[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Query field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.world),
			})
		}
	}
}

// ensurePlan recomputes the batch plan when the system set has changed.
// Planning failure is fatal for frame execution.
func (s *scheduler) ensurePlan() ([][]*systemNode, error) {
	if !s.planDirty {
		return s.plan, nil
	}

	plan, err := buildPlan(s.nodes)
	if err != nil {
		s.log.Error("system schedule planning failed", zap.Error(err))
		return nil, err
	}
	if err := verifyPlan(plan); err != nil {
		s.log.Error("planned batches violate access declarations", zap.Error(err))
		return nil, err
	}

	s.plan = plan
	s.planDirty = false
	s.log.Debug("system schedule planned",
		zap.Int("systems", len(s.nodes)),
		zap.Int("batches", len(plan)),
	)
	return plan, nil
}

// batchNames exposes the planned batch layout for inspection and tests.
func (s *scheduler) batchNames() ([][]string, error) {
	plan, err := s.ensurePlan()
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(plan))
	for i, batch := range plan {
		out[i] = make([]string, len(batch))
		for j, node := range batch {
			out[i][j] = node.name
		}
	}
	return out, nil
}

// executeFrame runs every batch in planned order. Within a batch, systems
// are dispatched across a bounded worker pool and the call blocks until the
// whole batch completes before the next batch starts. Queued events are
// delivered between batches; buffered structural commands apply once after
// the final batch.
func (s *scheduler) executeFrame(dt float64) error {
	plan, err := s.ensurePlan()
	if err != nil {
		return err
	}

	commands := newCommands()
	events := s.world.events
	events.beginFrame()

	for _, batch := range plan {
		if len(batch) == 1 || s.workers <= 1 {
			for _, node := range batch {
				s.runSystem(node, dt, commands)
			}
		} else {
			var group errgroup.Group
			group.SetLimit(s.workers)
			for _, node := range batch {
				group.Go(func() error {
					s.runSystem(node, dt, commands)
					return nil
				})
			}
			_ = group.Wait()
		}

		events.drain()
	}

	commands.flush(s.world)
	events.endFrame()
	return nil
}

func (s *scheduler) runSystem(node *systemNode, dt float64, commands *Commands) {
	frame := newUpdateFrame(dt, commands, s.world)

	start := time.Now()
	node.sys.Execute(frame)
	duration := time.Since(start)

	stats := s.stats[node.order]
	stats.executionCount++
	stats.entitiesProcessed += frame.Processed()
	stats.lastDuration = duration
	stats.totalDuration += duration

	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// getStats returns statistics about system execution.
func (s *scheduler) getStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.nodes),
		BatchCount:  len(s.plan),
		Systems:     make([]SystemStats, len(s.stats)),
	}

	var totalExecs int64
	for i, internal := range s.stats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:              internal.name,
			ExecutionCount:    internal.executionCount,
			EntitiesProcessed: internal.entitiesProcessed,
			MinDuration:       internal.minDuration,
			MaxDuration:       internal.maxDuration,
			AvgDuration:       avgDuration,
			LastDuration:      internal.lastDuration,
			TotalDuration:     internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
