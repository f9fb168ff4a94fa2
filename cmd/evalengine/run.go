package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/evalengine/core/internal/arena"
	"github.com/evalengine/core/internal/artifacts"
	"github.com/evalengine/core/internal/concurrency"
	"github.com/evalengine/core/internal/config"
	"github.com/evalengine/core/internal/orchestrator"
	"github.com/evalengine/core/internal/store"
	"github.com/evalengine/core/internal/store/jobstatus"
	"github.com/evalengine/core/internal/store/memory"
	"github.com/evalengine/core/internal/store/postgres"
)

// engineDeps bundles what a run command needs from the deployment config.
type engineDeps struct {
	cfg   *config.Config
	store store.Store
	close func()
}

// loadDeps resolves the deployment config and opens the durable store:
// Postgres (with the optional Redis job-status mirror) when a DSN is
// configured, an in-process store otherwise.
func loadDeps(ctx context.Context) (*engineDeps, error) {
	cfg, err := config.LoadConfigKoanf(CLI.Config)
	if err != nil {
		return nil, err
	}
	defaults := config.DefaultConfig()
	if cfg.Run.Concurrency == 0 {
		cfg.Run.Concurrency = defaults.Run.Concurrency
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = defaults.Artifacts.Dir
	}

	if cfg.Store.PostgresDSN == "" {
		return &engineDeps{cfg: cfg, store: memory.New(), close: func() {}}, nil
	}

	var mirror postgres.JobStatusStore
	var closers []func()
	if cfg.Store.RedisAddr != "" {
		ttl, _ := time.ParseDuration(cfg.Store.JobStatusTTL)
		js := jobstatus.New(jobstatus.Config{Addr: cfg.Store.RedisAddr, DB: cfg.Store.RedisDB, TTL: ttl})
		mirror = js
		closers = append(closers, func() { _ = js.Close() })
	}
	pg, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Store.PostgresDSN}, mirror)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() { _ = pg.Close() })
	return &engineDeps{cfg: cfg, store: pg, close: func() {
		for _, c := range closers {
			c()
		}
	}}, nil
}

func runContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() { cancel(); stop() }
}

func runExperiment(cmd *RunExperimentCmd) error {
	var payload experimentPayload
	if err := readPayload(cmd.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Timeout)
	defer cancel()

	deps, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	exp := payload.toExperiment(uuid.NewString())
	if err := deps.store.CreateExperiment(ctx, cmd.Tenant, exp); err != nil {
		return fmt.Errorf("create experiment: %w", err)
	}

	o := &orchestrator.Orchestrator{
		Store:       deps.store,
		Concurrency: concurrency.Options{Concurrency: deps.cfg.Run.Concurrency},
		Artifacts:   &artifacts.Writer{Dir: deps.cfg.Artifacts.Dir},
	}
	if err := o.Run(ctx, cmd.Tenant, exp); err != nil {
		return err
	}

	final, err := deps.store.GetExperimentByID(context.WithoutCancel(ctx), cmd.Tenant, exp.ID)
	if err != nil {
		return err
	}
	return printSummary(map[string]any{
		"experiment_id": final.ID,
		"status":        final.Status,
		"error_message": final.ErrorMessage,
		"results":       final.Results,
	})
}

func runArena(cmd *RunArenaCmd) error {
	var payload arenaPayload
	if err := readPayload(cmd.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Timeout)
	defer cancel()

	deps, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	cmp := payload.toComparison(uuid.NewString())
	if err := deps.store.CreateArenaComparison(ctx, cmd.Tenant, cmp); err != nil {
		return fmt.Errorf("create arena comparison: %w", err)
	}

	e := &arena.Engine{
		Store:       deps.store,
		APIKeys:     payload.APIKeys,
		Concurrency: concurrency.Options{Concurrency: deps.cfg.Run.Concurrency},
	}
	if err := e.Run(ctx, cmd.Tenant, cmp); err != nil {
		return err
	}

	final, err := deps.store.GetArenaComparison(context.WithoutCancel(ctx), cmd.Tenant, cmp.ID)
	if err != nil {
		return err
	}
	if final.Status == store.ArenaCompleted {
		w := &artifacts.Writer{Dir: deps.cfg.Artifacts.Dir}
		if err := w.WriteArena(cmd.Tenant, final); err != nil {
			fmt.Fprintf(os.Stderr, "evalengine: arena artifact write failed: %v\n", err)
		}
	}
	return printSummary(map[string]any{
		"comparison_id": final.ID,
		"status":        final.Status,
		"error_message": final.ErrorMessage,
		"results":       final.Results,
	})
}

func listScorers(cmd *ListScorersCmd) error {
	ctx := context.Background()
	deps, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	scorers, err := deps.store.ListScorers(ctx, cmd.Tenant, cmd.ProjectID)
	if err != nil {
		return err
	}
	for _, def := range scorers {
		state := "enabled"
		if !def.Enabled {
			state = "disabled"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", def.ID, def.Name, def.MetricKey, state)
	}
	return nil
}

func printSummary(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
