package messaging

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"portal/infrastructure"
	"portal/internal/auth"
	"portal/internal/chat"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	items, err := h.service.GetInbox(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "items": items})
}

func (h *JSONHandler) GetGroupMessages(w http.ResponseWriter, r *http.Request) {
	h.listMessages(w, r, chat.GroupRef(mux.Vars(r)["groupId"]))
}

func (h *JSONHandler) GetDirectMessages(w http.ResponseWriter, r *http.Request) {
	h.listMessages(w, r, chat.ThreadRef(mux.Vars(r)["threadId"]))
}

func (h *JSONHandler) listMessages(w http.ResponseWriter, r *http.Request, ref chat.Ref) {
	userID, _ := auth.UserID(r.Context())

	msgs, err := h.service.ListMessages(r.Context(), userID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []*chat.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "messages": msgs})
}

func (h *JSONHandler) PostGroupMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}

	msg, err := h.service.PostMessage(r.Context(), userID, chat.GroupRef(mux.Vars(r)["groupId"]), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": msg})
}

func (h *JSONHandler) SendDirectMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		ToEmail string `json:"toEmail"`
		Text    string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}

	threadID, msg, err := h.service.SendDirectMessage(r.Context(), userID, req.ToEmail, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "threadId": threadID, "message": msg})
}

func (h *JSONHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		Scope  string `json:"scope"`
		ChatID string `json:"chatId"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.MarkSeen(r.Context(), userID, req.Scope, req.ChatID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *JSONHandler) AttachFileToGroup(w http.ResponseWriter, r *http.Request) {
	h.attachFile(w, r, chat.GroupRef(mux.Vars(r)["groupId"]))
}

func (h *JSONHandler) AttachFileToThread(w http.ResponseWriter, r *http.Request) {
	h.attachFile(w, r, chat.ThreadRef(mux.Vars(r)["threadId"]))
}

func (h *JSONHandler) attachFile(w http.ResponseWriter, r *http.Request, ref chat.Ref) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		FileID string `json:"fileId"`
	}
	if !decode(w, r, &req) {
		return
	}

	msg, err := h.service.AttachFile(r.Context(), userID, ref, req.FileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": msg})
}

// SetupJSONMessagingRoutes mounts the messaging API on r behind am.
func SetupJSONMessagingRoutes(r *mux.Router, h *JSONHandler, am *auth.AuthMiddleware) {
	s := r.PathPrefix("/messages").Subrouter()
	s.Use(am.Middleware)

	s.HandleFunc("/inbox", h.GetInbox).Methods(http.MethodGet)
	s.HandleFunc("/groups/{groupId}", h.GetGroupMessages).Methods(http.MethodGet)
	s.HandleFunc("/groups/{groupId}", h.PostGroupMessage).Methods(http.MethodPost)
	s.HandleFunc("/direct", h.SendDirectMessage).Methods(http.MethodPost)
	s.HandleFunc("/direct/{threadId}", h.GetDirectMessages).Methods(http.MethodGet)
	s.HandleFunc("/seen", h.MarkSeen).Methods(http.MethodPost)
	s.HandleFunc("/groups/{groupId}/attach-file", h.AttachFileToGroup).Methods(http.MethodPost)
	s.HandleFunc("/threads/{threadId}/attach-file", h.AttachFileToThread).Methods(http.MethodPost)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
		return false
	}
	return true
}

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, infrastructure.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, infrastructure.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, infrastructure.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, infrastructure.ErrTransientStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	} else if status == http.StatusServiceUnavailable {
		slog.Warn("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "service temporarily unavailable, retry later"
	}
	writeJSON(w, status, map[string]interface{}{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
