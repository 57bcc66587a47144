package dto

// AssistantTurn is one prior exchange in an assistant conversation.
type AssistantTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AssistantChatRequest is one parent message to the household assistant.
type AssistantChatRequest struct {
	FamilyID string          `json:"family_id" validate:"required"`
	Message  string          `json:"message" validate:"required,min=1,max=4000"`
	History  []AssistantTurn `json:"history" validate:"omitempty,max=20,dive"`
}

// AssistantActionResult reports the outcome of one model-requested action.
type AssistantActionResult struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// AssistantChatResponse carries the assistant's reply and what it did.
type AssistantChatResponse struct {
	Reply   string                  `json:"reply"`
	Actions []AssistantActionResult `json:"actions"`
}
