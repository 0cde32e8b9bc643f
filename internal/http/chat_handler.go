package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	agentgraph "github.com/tryluxor/server/internal/agent/graph"
	"github.com/tryluxor/server/internal/agent/model"
	"github.com/tryluxor/server/pkg/validator"
)

type chatRequest struct {
	Message string `json:"message" validate:"notblank,max=4000"`
}

type chatResponse struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type messageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type threadMessagesResponse struct {
	ThreadID string            `json:"thread_id"`
	Messages []messageResponse `json:"messages"`
}

type chatHandler struct {
	runner    agentgraph.Runner
	validator validator.Validator
	newID     func() string
}

func newChatHandler(runner agentgraph.Runner, v validator.Validator) *chatHandler {
	return &chatHandler{
		runner:    runner,
		validator: v,
		newID:     uuid.NewString,
	}
}

func (h *chatHandler) StartChat(r *http.Request) (response, error) {
	return h.chat(r, h.newID())
}

func (h *chatHandler) ContinueChat(r *http.Request) (response, error) {
	return h.chat(r, chi.URLParam(r, "thread_id"))
}

func (h *chatHandler) chat(r *http.Request, threadID string) (response, error) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		return response{}, err
	}
	if err := h.validator.Validate(req); err != nil {
		return response{}, err
	}

	out, err := h.runner.Chat(r.Context(), model.ChatInput{ThreadID: threadID, Message: req.Message})
	if err != nil {
		return response{}, fmt.Errorf("agent chat: %w", err)
	}

	return ok(chatResponse{Message: out.Message, ThreadID: out.ThreadID}), nil
}

func (h *chatHandler) ListMessages(r *http.Request) (response, error) {
	threadID := chi.URLParam(r, "thread_id")
	history, err := h.runner.History(r.Context(), threadID)
	if err != nil {
		return response{}, fmt.Errorf("agent history: %w", err)
	}

	items := make([]messageResponse, 0, len(history))
	for _, msg := range history {
		items = append(items, messageResponse{Role: string(msg.Role), Content: msg.Content})
	}
	return ok(threadMessagesResponse{ThreadID: threadID, Messages: items}), nil
}

func (h *chatHandler) ClearThread(r *http.Request) (response, error) {
	threadID := chi.URLParam(r, "thread_id")
	if err := h.runner.Clear(r.Context(), threadID); err != nil {
		return response{}, fmt.Errorf("agent clear: %w", err)
	}
	return ok(map[string]string{"message": "Conversation cleared", "thread_id": threadID}), nil
}
