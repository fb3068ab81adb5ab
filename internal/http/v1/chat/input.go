package chat

// CreateInput is the request for POST /chat.
type CreateInput struct {
	Body struct {
		_ struct{} `json:"-" additionalProperties:"true"`
		// Message is accepted in any JSON type and never inspected.
		Message any `json:"message,omitempty" doc:"User message; accepted but not used to build the reply"`
	} `required:"true"`
}
