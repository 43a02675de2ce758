// Package handler exposes the public submission endpoints and the
// owner-facing response endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"canvass/internal/platform/middleware"
	qmodels "canvass/internal/questionnaire/models"
	"canvass/internal/response/models"
	"canvass/internal/response/service"
	"canvass/internal/transport/http/shared"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// SessionCookie carries the anonymous session id the one-per-session guard
// keys on.
const SessionCookie = "canvass_session"

const sessionCookieMaxAge = 30 * 24 * time.Hour

// Service defines the response operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, input service.SubmitInput) (*models.Response, error)
	Get(ctx context.Context, ownerID id.OwnerID, responseID id.ResponseID) (*models.Response, error)
	ListByQuestionnaire(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) ([]*models.Response, error)
	CorrectAnswer(ctx context.Context, ownerID id.OwnerID, responseID id.ResponseID, answerID id.AnswerID, raw any) (*models.Response, error)
}

// PublicReader loads questionnaires by their public slug.
type PublicReader interface {
	GetBySlug(ctx context.Context, rawSlug string) (*qmodels.Questionnaire, error)
}

type Handler struct {
	logger    *slog.Logger
	responses Service
	public    PublicReader
	validator middleware.TokenValidator
}

func New(responses Service, public PublicReader, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		responses: responses,
		public:    public,
		validator: validator,
	}
}

// Register mounts both route groups: the anonymous public surface under /q,
// and the authenticated response administration.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.ContentTypeJSON)
		g.Get("/q/{slug}", h.handlePublicGet)
		g.Post("/q/{slug}/responses", h.handleSubmit)
	})

	r.Group(func(g chi.Router) {
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.RequireOwner(h.validator, h.logger))
		g.Get("/questionnaires/{questionnaireID}/responses", h.handleList)
		g.Get("/responses/{responseID}", h.handleGet)
		g.Put("/responses/{responseID}/answers/{answerID}", h.handleCorrectAnswer)
	})
}

func (h *Handler) handlePublicGet(w http.ResponseWriter, r *http.Request) {
	questionnaire, err := h.public.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPublicQuestionnaireView(questionnaire))
}

type submitRequest struct {
	RespondentType string         `json:"respondent_type"`
	RespondentID   string         `json:"respondent_id"`
	Answers        map[string]any `json:"answers"`
	Metadata       map[string]any `json:"metadata"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// The session cookie is issued before the guard runs so a respondent's
	// first submission already carries the id later ones are checked against.
	sessionID := h.ensureSession(w, r)

	response, err := h.responses.Submit(ctx, service.SubmitInput{
		Slug:           chi.URLParam(r, "slug"),
		RespondentType: req.RespondentType,
		RespondentID:   req.RespondentID,
		IP:             clientIP(r),
		UserAgent:      r.UserAgent(),
		SessionID:      sessionID,
		Values:         req.Answers,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submission rejected",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponseView(response))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	responses, err := h.responses.ListByQuestionnaire(r.Context(), ownerID, questionnaireID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]responseView, 0, len(responses))
	for _, response := range responses {
		views = append(views, toResponseView(response))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"responses": views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	responseID, err := id.ParseResponseID(chi.URLParam(r, "responseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	response, err := h.responses.Get(r.Context(), ownerID, responseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponseView(response))
}

type correctAnswerRequest struct {
	Value any `json:"value"`
}

func (h *Handler) handleCorrectAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	responseID, err := id.ParseResponseID(chi.URLParam(r, "responseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	answerID, err := id.ParseAnswerID(chi.URLParam(r, "answerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req correctAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	response, err := h.responses.CorrectAnswer(ctx, ownerID, responseID, answerID, req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "answer correction failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponseView(response))
}

// ensureSession returns the submission session id, minting and setting the
// cookie when the client has none.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (id.OwnerID, bool) {
	ctx := r.Context()
	raw := middleware.GetOwnerID(ctx)
	if raw == "" {
		h.logger.ErrorContext(ctx, "owner id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.OwnerID{}, false
	}
	ownerID, err := id.ParseOwnerID(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid owner identity"))
		return id.OwnerID{}, false
	}
	return ownerID, true
}
