package chat

// Reply is the response payload of the chat endpoint.
type Reply struct {
	Reply string `json:"reply" doc:"Fixed reply text" example:"This is a hardcoded reply from the Flask backend."`
}
