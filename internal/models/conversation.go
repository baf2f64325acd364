package models

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered message sequence that always starts with
// exactly one system message.
type Conversation struct {
	messages []Message
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a message to the end. Roles are not validated.
func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Reset drops every message and starts again from a fresh system message.
func (c *Conversation) Reset(systemPrompt string) {
	c.messages = []Message{{Role: RoleSystem, Content: systemPrompt}}
}

// Messages returns a copy of the full sequence, system message included.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// RecentHistory returns the last n non-system messages in chronological order.
func (c *Conversation) RecentHistory(n int) []Message {
	return recent(c.messages, n)
}

// recent filters out system messages and keeps the last n of the rest.
func recent(messages []Message, n int) []Message {
	history := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		history = append(history, m)
	}
	if n < 0 {
		n = 0
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}
