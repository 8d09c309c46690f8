package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/envelopes"
)

// SessionService authenticates accounts and verifies session tokens.
type SessionService interface {
	Authenticate(ctx context.Context, accountID string, verifier []byte) (string, error)
	VerifyToken(tokenString string) (string, error)
}

// EnvelopeService stores and serves encrypted envelopes per account.
type EnvelopeService interface {
	ListSince(ctx context.Context, accountID string, since int64) ([]*envelopes.Envelope, error)
	Upsert(ctx context.Context, accountID string, env *envelopes.Envelope) error
	Delete(ctx context.Context, accountID, id string, modifiedAt int64) error
}

// Handler carries the services behind the HTTP endpoints.
type Handler struct {
	sessions  SessionService
	envelopes EnvelopeService
	logger    logging.Logger
}

func NewHandler(sessions SessionService, envSvc EnvelopeService, logger logging.Logger) *Handler {
	return &Handler{sessions: sessions, envelopes: envSvc, logger: logger}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionRequest struct {
	AccountID string `json:"account_id"`
	Verifier  []byte `json:"verifier"`
}

// Session exchanges an account identifier and verifier for a bearer token.
// Unknown accounts are registered on first contact.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.sessions.Authenticate(r.Context(), req.AccountID, req.Verifier)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			http.Error(w, common.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "session error", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ListEnvelopes returns the account's envelopes modified strictly after the
// since query parameter (unix ms, 0 when absent).
func (h *Handler) ListEnvelopes(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromContext(r.Context())

	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	result, err := h.envelopes.ListSince(r.Context(), accountID, since)
	if err != nil {
		h.logger.Error(r.Context(), "list envelopes error", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if result == nil {
		result = []*envelopes.Envelope{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"envelopes": result})
}

// PutEnvelope upserts one envelope. The path ID is authoritative; a body ID
// is overwritten.
func (h *Handler) PutEnvelope(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromContext(r.Context())

	var env envelopes.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	env.ID = chi.URLParam(r, "id")
	if env.ID == "" || env.ModifiedAt <= 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !env.Deleted && (len(env.Ciphertext) == 0 || len(env.Nonce) == 0) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.envelopes.Upsert(r.Context(), accountID, &env); err != nil {
		h.logger.Error(r.Context(), "put envelope error", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteEnvelope records a tombstone with the author's modified_at stamp.
func (h *Handler) DeleteEnvelope(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	modifiedAt, err := strconv.ParseInt(r.URL.Query().Get("modified_at"), 10, 64)
	if err != nil || id == "" || modifiedAt <= 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.envelopes.Delete(r.Context(), accountID, id, modifiedAt); err != nil {
		h.logger.Error(r.Context(), "delete envelope error", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
