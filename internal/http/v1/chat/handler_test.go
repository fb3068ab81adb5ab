package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/chat-reply-api/internal/config"
	applog "github.com/janisto/chat-reply-api/internal/platform/logging"
	appmiddleware "github.com/janisto/chat-reply-api/internal/platform/middleware"
	"github.com/janisto/chat-reply-api/internal/platform/openapi"
	"github.com/janisto/chat-reply-api/internal/platform/respond"
)

func newTestRouter(h *Handler) chi.Router {
	respond.Install()
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(""),
		respond.Recoverer(),
	)
	api := humachi.New(router, openapi.Config("ChatTest", "test"))
	Register(api, h)
	return router
}

func postChat(t *testing.T, router http.Handler, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(chimiddleware.RequestIDHeader, "chat-test")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// assertFixedReply checks for a 200 JSON response whose only field is reply.
func assertFixedReply(t *testing.T, resp *httptest.ResponseRecorder, want string) {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected exactly one field, got %v", payload)
	}
	if payload["reply"] != want {
		t.Fatalf("expected reply %q, got %v", want, payload["reply"])
	}
}

func TestPostChatReturnsFixedReply(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	resp := postChat(t, router, "application/json", []byte(`{"message":"hello"}`))

	assertFixedReply(t, resp, "This is a hardcoded reply from the Flask backend.")
}

func TestPostIgnoresMessageContent(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	bodies := map[string]string{
		"empty string":    `{"message":""}`,
		"missing message": `{}`,
		"number":          `{"message":12345}`,
		"null":            `{"message":null}`,
		"object":          `{"message":{"text":"hi"}}`,
		"array":           `{"message":["a","b"]}`,
		"unicode":         `{"message":"päivää 👋"}`,
		"extra fields":    `{"message":"hi","sessionId":"abc","language":"en"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			resp := postChat(t, router, "application/json", []byte(body))
			assertFixedReply(t, resp, config.DefaultReply)
		})
	}
}

func TestPostWithoutContentTypeDefaultsToJSON(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	resp := postChat(t, router, "", []byte(`{"message":"hello"}`))

	assertFixedReply(t, resp, config.DefaultReply)
}

func TestPostIsIdempotent(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))
	body := []byte(`{"message":"same"}`)

	first := postChat(t, router, "application/json", body)
	second := postChat(t, router, "application/json", body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("expected identical bodies, got %q and %q", first.Body.String(), second.Body.String())
	}
}

func TestPostUsesConfiguredReply(t *testing.T) {
	router := newTestRouter(NewHandler("Configured reply.", 0))

	resp := postChat(t, router, "application/json", []byte(`{"message":"hello"}`))

	assertFixedReply(t, resp, "Configured reply.")
}

func TestPostCBORRoundTrip(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	body, err := cbor.Marshal(map[string]any{"message": "hello"})
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/cbor")
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Errorf("expected application/cbor, got %s", ct)
	}
	var reply Reply
	if err := cbor.Unmarshal(resp.Body.Bytes(), &reply); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if reply.Reply != config.DefaultReply {
		t.Errorf("expected %q, got %q", config.DefaultReply, reply.Reply)
	}
}

func assertProblem(t *testing.T, resp *httptest.ResponseRecorder, status int) {
	t.Helper()
	if resp.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected application/problem+json, got %s", ct)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if problem.Status != status {
		t.Errorf("expected problem status %d, got %d", status, problem.Status)
	}
	if strings.Contains(resp.Body.String(), config.DefaultReply) {
		t.Error("error response must not contain the reply")
	}
}

func TestPostMalformedJSONReturnsBadRequest(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	for _, body := range []string{`hi`, `{"message":`, `{message: "hi"}`} {
		t.Run(body, func(t *testing.T) {
			assertProblem(t, postChat(t, router, "application/json", []byte(body)), http.StatusBadRequest)
		})
	}
}

func TestPostNonObjectJSONReturnsUnprocessable(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	for _, body := range []string{`[]`, `"hi"`, `null`} {
		t.Run(body, func(t *testing.T) {
			assertProblem(t, postChat(t, router, "application/json", []byte(body)), http.StatusUnprocessableEntity)
		})
	}
}

func TestPostEmptyBodyReturnsBadRequest(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	assertProblem(t, postChat(t, router, "application/json", nil), http.StatusBadRequest)
}

func TestPostUnsupportedContentType(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	assertProblem(t, postChat(t, router, "text/plain", []byte(`hi`)), http.StatusUnsupportedMediaType)
}

func TestPostBodyTooLarge(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 32))

	body := []byte(`{"message":"` + strings.Repeat("x", 64) + `"}`)
	assertProblem(t, postChat(t, router, "application/json", body), http.StatusRequestEntityTooLarge)
}

func TestGetChatNotAllowed(t *testing.T) {
	router := newTestRouter(NewHandler(config.DefaultReply, 0))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertProblem(t, resp, http.StatusMethodNotAllowed)
	if allow := resp.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow POST, got %q", allow)
	}
}

func TestRegisterDocumentsOperation(t *testing.T) {
	api := humachi.New(chi.NewRouter(), openapi.Config("ChatTest", "test"))
	Register(api, NewHandler(config.DefaultReply, 0))

	op := api.OpenAPI().Paths["/chat"].Post
	if op == nil {
		t.Fatal("expected POST /chat in OpenAPI document")
	}
	if op.OperationID != "create-chat-reply" {
		t.Errorf("unexpected operation ID %q", op.OperationID)
	}
	if op.RequestBody == nil || !op.RequestBody.Required {
		t.Error("expected required request body")
	}
}
