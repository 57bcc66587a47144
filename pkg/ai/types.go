package ai

import "context"

// ChatInput carries one assistant turn plus the household context the model
// needs to ground its answer.
type ChatInput struct {
	Message        string
	StudentNames   []string
	SubjectNames   []string
	OpenAssignment string
	History        []Turn
}

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult is the assistant's reply. Actions are machine-readable commands
// the model may embed in its answer, e.g. "add_assignment".
type ChatResult struct {
	Reply   string                   `json:"reply"`
	Actions []map[string]interface{} `json:"actions,omitempty"`
	Raw     map[string]interface{}   `json:"raw,omitempty"`
}

// Assistant describes a conversational model for the household helper.
type Assistant interface {
	Chat(ctx context.Context, input ChatInput) (ChatResult, error)
}
