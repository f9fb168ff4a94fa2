package testcase

import (
	"context"
	"strings"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/sample"
)

// doneSentinel is what a ProviderUserSimulator's judge-user prompt asks the
// model to emit once the scenario's expected outcome has been reached.
const doneSentinel = "[DONE]"

// ProviderUserSimulator drives a ConversationSimulator's user turns with the
// same kind of provider call the assistant side uses: a prompt asking the
// model to role-play the user pursuing UserDescription, replying with
// doneSentinel once the scenario's expected outcome has been reached. This
// is the default concrete ConversationSimulator the orchestrator wires in
// for simulatedMode runs (the simulator is a pluggable
// external collaborator).
type ProviderUserSimulator struct {
	Provider providers.Provider
	Model    string
}

// NextUserTurn implements ConversationSimulator.
func (s *ProviderUserSimulator) NextUserTurn(ctx context.Context, golden sample.ConversationalGolden, history []sample.Message, threadID string) (string, bool, error) {
	prompt := userSimulatorPrompt(golden, history)
	out, err := providers.GenerateWithRetry(ctx, s.Provider, providers.GenerateRequest{
		Model:       s.Model,
		Prompt:      prompt,
		MaxTokens:   256,
		Temperature: 0.7,
	})
	if err != nil {
		return "", true, err
	}
	trimmed := strings.TrimSpace(out)
	if trimmed == "" || strings.Contains(trimmed, doneSentinel) {
		return "", true, nil
	}
	return trimmed, false, nil
}

func userSimulatorPrompt(golden sample.ConversationalGolden, history []sample.Message) string {
	var b strings.Builder
	b.WriteString("You are role-playing as a user in this scenario: ")
	b.WriteString(golden.Scenario)
	if golden.UserDescription != "" {
		b.WriteString("\nUser persona/goal: ")
		b.WriteString(golden.UserDescription)
	}
	if golden.ExpectedOutcome != "" {
		b.WriteString("\nThe conversation is done once this outcome is reached: ")
		b.WriteString(golden.ExpectedOutcome)
	}
	b.WriteString("\n\nConversation so far:\n")
	for _, m := range history {
		switch m.Role {
		case sample.RoleUser:
			b.WriteString("User: ")
		case sample.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with ONLY the user's next message. If the expected outcome has been reached, respond with exactly ")
	b.WriteString(doneSentinel)
	b.WriteString(" and nothing else.")
	return b.String()
}
