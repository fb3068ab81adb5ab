package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/chat-reply-api/internal/http/v1/chat"
)

// Register wires all API operations into the provided API router.
func Register(api huma.API, chatHandler *chat.Handler) {
	chat.Register(api, chatHandler)
}
