// Command evalengine runs the evaluation execution engine from the command
// line: single experiments, arena comparisons, and catalog listings, against
// either the durable Postgres store or an in-process store for local runs.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/evalengine/core/internal/logging"

	// Register all provider backends via init().
	_ "github.com/evalengine/core/internal/providers/anthropic"
	_ "github.com/evalengine/core/internal/providers/customapi"
	_ "github.com/evalengine/core/internal/providers/google"
	_ "github.com/evalengine/core/internal/providers/huggingface"
	_ "github.com/evalengine/core/internal/providers/mistral"
	_ "github.com/evalengine/core/internal/providers/ollama"
	_ "github.com/evalengine/core/internal/providers/openai"
	_ "github.com/evalengine/core/internal/providers/openrouter"
	_ "github.com/evalengine/core/internal/providers/xai"
)

var version = "dev"

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("evalengine"),
		kong.Description("LLM evaluation engine: experiments, judge metrics, custom scorers, and arena comparisons."),
		kong.UsageOnError(),
	)

	level := "info"
	if CLI.Debug {
		level = "debug"
	}
	logging.Configure(level, CLI.LogFormat, os.Stderr)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "evalengine: %v\n", err)
		os.Exit(1)
	}
}
