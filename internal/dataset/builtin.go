package dataset

import (
	"embed"
	"fmt"
)

//go:embed presets/chatbot.json presets/rag.json presets/agent.json presets/safety.json
var builtinFS embed.FS

// builtinPaths maps the useBuiltin tags to their embedded preset file under
// presets/, which holds copies of data/datasets/<useCase>/prompts.json.
var builtinPaths = map[string]string{
	"chatbot": "presets/chatbot.json",
	"rag":     "presets/rag.json",
	"agent":   "presets/agent.json",
	"safety":  "presets/safety.json",
}

func loadBuiltin(useCase string) ([]byte, error) {
	path, ok := builtinPaths[useCase]
	if !ok {
		return nil, fmt.Errorf("dataset: unknown builtin use case %q", useCase)
	}
	return builtinFS.ReadFile(path)
}
