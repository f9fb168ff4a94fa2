package sample

import "strings"

// Conversation is a flat, ordered sequence of user/assistant messages as
// actually materialized during a multi-turn replay or simulation. Order is
// occurrence order: turns must never be reordered once appended.
type Conversation struct {
	Turns []Message `json:"turns"`
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation { return &Conversation{Turns: make([]Message, 0)} }

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) { c.Turns = append(c.Turns, msg) }

// AppendUser is a convenience wrapper around Append for user turns.
func (c *Conversation) AppendUser(content string) { c.Append(NewUserMessage(content)) }

// AppendAssistant is a convenience wrapper around Append for assistant turns.
func (c *Conversation) AppendAssistant(content string) { c.Append(NewAssistantMessage(content)) }

// TurnCount returns the number of materialized turns (user + assistant).
func (c *Conversation) TurnCount() int { return len(c.Turns) }

// RenderHistory renders prior turns as "Role: content\n" lines, in order,
// matching the replay prompt shape in the test case builder.
func (c *Conversation) RenderHistory() string {
	var b strings.Builder
	for _, t := range c.Turns {
		switch t.Role {
		case RoleUser:
			b.WriteString("User: ")
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// LastN returns at most the last n turns, preserving order. Used to bound the
// context window passed to a conversation simulator callback.
func (c *Conversation) LastN(n int) []Message {
	if n <= 0 || len(c.Turns) <= n {
		out := make([]Message, len(c.Turns))
		copy(out, c.Turns)
		return out
	}
	out := make([]Message, n)
	copy(out, c.Turns[len(c.Turns)-n:])
	return out
}
