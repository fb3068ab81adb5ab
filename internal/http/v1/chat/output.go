package chat

// CreateOutput is the response for POST /chat.
type CreateOutput struct {
	Body Reply
}
