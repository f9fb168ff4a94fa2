package main

import (
	"fmt"
	"time"

	"github.com/evalengine/core/internal/metrics"
	"github.com/evalengine/core/internal/providers"
)

// CLI is the evalengine command-line interface.
var CLI struct {
	Debug     bool   `help:"Enable debug logging." short:"d" env:"EVALENGINE_DEBUG"`
	LogFormat string `help:"Log output format." enum:"text,json" default:"text" env:"EVALENGINE_LOG_FORMAT"`
	Config    string `help:"Deployment config YAML path." type:"existingfile" env:"EVALENGINE_CONFIG"`

	Version       VersionCmd       `cmd:"" help:"Print version information."`
	List          ListCmd          `cmd:"" help:"List available providers and metrics."`
	RunExperiment RunExperimentCmd `cmd:"" name:"run-experiment" help:"Run one experiment from a JSON config payload."`
	RunArena      RunArenaCmd      `cmd:"" name:"run-arena" help:"Run one arena comparison from a JSON config payload."`
	ListScorers   ListScorersCmd   `cmd:"" name:"list-scorers" help:"List a tenant's stored custom scorers."`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("evalengine %s\n", version)
	return nil
}

// ListCmd lists the provider and metric catalogs.
type ListCmd struct{}

func (l *ListCmd) Run() error {
	fmt.Println("Providers:")
	for _, name := range providers.List() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("Metrics:")
	for _, name := range metrics.List() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

// RunExperimentCmd runs one experiment end to end.
type RunExperimentCmd struct {
	Payload string        `arg:"" help:"Path to the experiment config JSON payload." type:"existingfile"`
	Tenant  string        `help:"Tenant the run is scoped to." required:"" env:"EVALENGINE_TENANT"`
	Timeout time.Duration `help:"Overall run timeout." default:"30m"`
}

func (r *RunExperimentCmd) Run() error {
	return runExperiment(r)
}

// RunArenaCmd runs one arena comparison end to end.
type RunArenaCmd struct {
	Payload string        `arg:"" help:"Path to the arena config JSON payload." type:"existingfile"`
	Tenant  string        `help:"Tenant the comparison is scoped to." required:"" env:"EVALENGINE_TENANT"`
	Timeout time.Duration `help:"Overall run timeout." default:"30m"`
}

func (r *RunArenaCmd) Run() error {
	return runArena(r)
}

// ListScorersCmd lists a tenant's stored custom scorers.
type ListScorersCmd struct {
	Tenant    string `help:"Tenant to list scorers for." required:"" env:"EVALENGINE_TENANT"`
	ProjectID string `help:"Optional project filter." name:"project-id"`
}

func (l *ListScorersCmd) Run() error {
	return listScorers(l)
}
