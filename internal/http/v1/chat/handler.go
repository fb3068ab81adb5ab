package chat

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/chat-reply-api/internal/platform/logging"
)

// Handler answers every chat request with the same reply.
type Handler struct {
	reply        string
	maxBodyBytes int64
}

// NewHandler returns a Handler that always responds with reply. Request bodies
// larger than maxBodyBytes are rejected with 413; zero keeps huma's default limit.
func NewHandler(reply string, maxBodyBytes int64) *Handler {
	return &Handler{reply: reply, maxBodyBytes: maxBodyBytes}
}

// Register wires the chat route into the provided API.
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID:  "create-chat-reply",
		Method:       http.MethodPost,
		Path:         "/chat",
		Summary:      "Send a chat message",
		Description:  "Accepts a message and returns the configured fixed reply. The message content does not affect the response.",
		Tags:         []string{"Chat"},
		MaxBodyBytes: h.maxBodyBytes,
	}, h.create)
}

func (h *Handler) create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	applog.LogInfo(ctx, "chat reply", zap.Bool("message_present", input.Body.Message != nil))
	return &CreateOutput{Body: Reply{Reply: h.reply}}, nil
}
