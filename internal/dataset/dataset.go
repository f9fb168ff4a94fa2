// Package dataset resolves an experiment or arena dataset reference to a
// uniform slice of samples.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evalengine/core/internal/sample"
)

// DefaultMaxTurns is the default cap on simulated-conversation turns when
// the config omits maxTurns.
const DefaultMaxTurns = 6

// ArenaPromptCap is the hard limit on prompts fed into an arena comparison.
const ArenaPromptCap = 10

// Reference mirrors the config payload's `dataset` block. Fields are
// mutually exclusive and resolved in priority order: SimulatedMode (with
// Scenarios), then Prompts/Conversations, then UseBuiltin, then Path.
type Reference struct {
	Prompts       []json.RawMessage
	Conversations []json.RawMessage
	UseBuiltin    string
	Path          string
	SimulatedMode bool
	Scenarios     []ScenarioSpec
	MaxTurns      int

	// ModuleRoot is used to resolve a relative Path; defaults to the
	// current working directory if empty.
	ModuleRoot string
}

// ScenarioSpec is one simulated-conversation seed.
type ScenarioSpec struct {
	Scenario        string `json:"scenario"`
	ExpectedOutcome string `json:"expected_outcome"`
	UserDescription string `json:"user_description"`
}

// Kind identifies the shape of a resolved dataset.
type Kind string

const (
	KindSingleTurn     Kind = "single_turn"
	KindConversational Kind = "conversational"
	KindSimulated      Kind = "simulated"
)

// Dataset is the resolved, uniform result of Load.
type Dataset struct {
	Kind      Kind
	Samples   []sample.Sample
	Scenarios []ScenarioSpec // only set when Kind == KindSimulated
	MaxTurns  int            // only meaningful when Kind == KindSimulated
}

type singleTurnJSON struct {
	ID             string `json:"id"`
	Prompt         string `json:"prompt"`
	ExpectedOutput string `json:"expected_output"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
}

type turnJSON struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversationalJSON struct {
	Scenario        string     `json:"scenario"`
	ExpectedOutcome string     `json:"expected_outcome"`
	Turns           []turnJSON `json:"turns"`
}

// Load resolves ref into a Dataset, honoring the priority order and
// detection rules.
func Load(ref Reference) (Dataset, error) {
	if ref.SimulatedMode {
		return loadSimulated(ref)
	}

	if len(ref.Prompts) > 0 {
		return decodeSingleTurn(ref.Prompts)
	}
	if len(ref.Conversations) > 0 {
		return decodeConversational(ref.Conversations)
	}

	var raw []byte
	var err error
	switch {
	case ref.UseBuiltin != "":
		raw, err = loadBuiltin(ref.UseBuiltin)
	case ref.Path != "":
		path := ref.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(ref.ModuleRoot, path)
		}
		raw, err = os.ReadFile(path)
	default:
		return Dataset{}, fmt.Errorf("dataset: %w", ErrNoSamples)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset: %w", err)
	}

	return decodeRaw(raw)
}

// decodeRaw applies the shape detection rule: a top-level JSON list
// whose first element has a "turns" key is conversational; a "prompt" key
// is single-turn; otherwise it's a detection failure.
func decodeRaw(raw []byte) (Dataset, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Dataset{}, fmt.Errorf("dataset: %w: %v", ErrMalformedDataset, err)
	}
	if len(items) == 0 {
		return Dataset{}, fmt.Errorf("dataset: %w", ErrEmptyDataset)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &probe); err != nil {
		return Dataset{}, fmt.Errorf("dataset: %w", ErrNoSamples)
	}

	if _, ok := probe["turns"]; ok {
		return decodeConversational(items)
	}
	if _, ok := probe["prompt"]; ok {
		return decodeSingleTurn(items)
	}
	return Dataset{}, fmt.Errorf("dataset: %w", ErrNoSamples)
}

func decodeSingleTurn(items []json.RawMessage) (Dataset, error) {
	samples := make([]sample.Sample, 0, len(items))
	for i, item := range items {
		var st singleTurnJSON
		if err := json.Unmarshal(item, &st); err != nil {
			return Dataset{}, fmt.Errorf("dataset: decode single-turn sample %d: %w", i, err)
		}
		samples = append(samples, sample.Sample{
			ID:             st.ID,
			Prompt:         st.Prompt,
			ExpectedOutput: st.ExpectedOutput,
			Category:       st.Category,
			Difficulty:     st.Difficulty,
		})
	}
	if len(samples) == 0 {
		return Dataset{}, fmt.Errorf("dataset: %w", ErrEmptyDataset)
	}
	return Dataset{Kind: KindSingleTurn, Samples: samples}, nil
}

func decodeConversational(items []json.RawMessage) (Dataset, error) {
	samples := make([]sample.Sample, 0, len(items))
	for i, item := range items {
		var conv conversationalJSON
		if err := json.Unmarshal(item, &conv); err != nil {
			return Dataset{}, fmt.Errorf("dataset: decode conversational sample %d: %w", i, err)
		}
		turns := make([]sample.Message, 0, len(conv.Turns))
		for _, t := range conv.Turns {
			turns = append(turns, sample.Message{Role: sample.Role(t.Role), Content: t.Content})
		}
		samples = append(samples, sample.Sample{
			Scenario:        conv.Scenario,
			ExpectedOutcome: conv.ExpectedOutcome,
			InputTurns:      turns,
		})
	}
	if len(samples) == 0 {
		return Dataset{}, fmt.Errorf("dataset: %w", ErrEmptyDataset)
	}
	return Dataset{Kind: KindConversational, Samples: samples}, nil
}

func loadSimulated(ref Reference) (Dataset, error) {
	if len(ref.Scenarios) == 0 {
		return Dataset{}, fmt.Errorf("dataset: %w", ErrEmptyDataset)
	}
	maxTurns := ref.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	samples := make([]sample.Sample, 0, len(ref.Scenarios))
	for _, sc := range ref.Scenarios {
		samples = append(samples, sample.Sample{
			Scenario:        sc.Scenario,
			ExpectedOutcome: sc.ExpectedOutcome,
		})
	}
	return Dataset{Kind: KindSimulated, Samples: samples, Scenarios: ref.Scenarios, MaxTurns: maxTurns}, nil
}

// CapForArena truncates samples to the arena's per-comparison prompt limit.
func CapForArena(samples []sample.Sample) []sample.Sample {
	if len(samples) <= ArenaPromptCap {
		return samples
	}
	return samples[:ArenaPromptCap]
}
