// Package handler exposes the owner-facing questionnaire endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canvass/internal/platform/middleware"
	"canvass/internal/questionnaire/models"
	"canvass/internal/questionnaire/service"
	"canvass/internal/stats"
	"canvass/internal/transport/http/shared"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// Service defines the questionnaire operations the handler exposes.
type Service interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Questionnaire, error)
	Update(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, input service.UpdateInput) (*models.Questionnaire, error)
	Get(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error)
	List(ctx context.Context, ownerID id.OwnerID, rawStatus string) ([]*models.Questionnaire, error)
	Publish(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, startsAt, endsAt *time.Time) (*models.Questionnaire, error)
	Close(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error)
	Archive(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error)
	AddQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, input service.QuestionInput) (models.Question, error)
	UpdateQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, questionID id.QuestionID, input service.QuestionInput) (models.Question, error)
	RemoveQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, questionID id.QuestionID) error
}

// Summarizer computes response statistics for an owner's questionnaire.
type Summarizer interface {
	Summarize(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*stats.Summary, error)
}

type Handler struct {
	logger        *slog.Logger
	questionnaire Service
	summarizer    Summarizer
	validator     middleware.TokenValidator
}

func New(questionnaire Service, summarizer Summarizer, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:        logger,
		questionnaire: questionnaire,
		summarizer:    summarizer,
		validator:     validator,
	}
}

// Register mounts the admin routes. Callers provide the common middleware;
// this group adds owner authentication on top.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.RequireOwner(h.validator, h.logger))

		g.Post("/questionnaires", h.handleCreate)
		g.Get("/questionnaires", h.handleList)
		g.Get("/questionnaires/{questionnaireID}", h.handleGet)
		g.Put("/questionnaires/{questionnaireID}", h.handleUpdate)
		g.Post("/questionnaires/{questionnaireID}/publish", h.handlePublish)
		g.Post("/questionnaires/{questionnaireID}/close", h.handleClose)
		g.Post("/questionnaires/{questionnaireID}/archive", h.handleArchive)
		g.Get("/questionnaires/{questionnaireID}/summary", h.handleSummary)

		g.Post("/questionnaires/{questionnaireID}/questions", h.handleAddQuestion)
		g.Put("/questionnaires/{questionnaireID}/questions/{questionID}", h.handleUpdateQuestion)
		g.Delete("/questionnaires/{questionnaireID}/questions/{questionID}", h.handleRemoveQuestion)
	})
}

type questionnaireRequest struct {
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Settings    map[string]any `json:"settings"`
	StartsAt    *time.Time     `json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at"`
}

type publishRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type questionRequest struct {
	Text        string         `json:"text"`
	Type        string         `json:"type"`
	Options     []string       `json:"options"`
	Required    bool           `json:"required"`
	Order       int            `json:"order"`
	Description string         `json:"description"`
	Settings    map[string]any `json:"settings"`
}

func (q questionRequest) toInput() service.QuestionInput {
	return service.QuestionInput{
		Text:        q.Text,
		Type:        q.Type,
		Options:     q.Options,
		Required:    q.Required,
		Order:       q.Order,
		Description: q.Description,
		Settings:    q.Settings,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req questionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	questionnaire, err := h.questionnaire.Create(ctx, service.CreateInput{
		OwnerID:     ownerID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Settings:    req.Settings,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		h.logWarn(ctx, "create questionnaire failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toQuestionnaireView(questionnaire))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	questionnaires, err := h.questionnaire.List(r.Context(), ownerID, r.URL.Query().Get("status"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]questionnaireView, 0, len(questionnaires))
	for _, q := range questionnaires {
		views = append(views, toQuestionnaireView(q))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"questionnaires": views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	questionnaire, err := h.questionnaire.Get(r.Context(), ownerID, questionnaireID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toQuestionnaireView(questionnaire))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req questionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	questionnaire, err := h.questionnaire.Update(ctx, ownerID, questionnaireID, service.UpdateInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Settings:    req.Settings,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		h.logWarn(ctx, "update questionnaire failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toQuestionnaireView(questionnaire))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// The window is optional; an empty body publishes immediately without one.
	var req publishRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	questionnaire, err := h.questionnaire.Publish(ctx, ownerID, questionnaireID, req.StartsAt, req.EndsAt)
	if err != nil {
		h.logWarn(ctx, "publish questionnaire failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toQuestionnaireView(questionnaire))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.questionnaire.Close)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.questionnaire.Archive)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.OwnerID, id.QuestionnaireID) (*models.Questionnaire, error)) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	questionnaire, err := op(r.Context(), ownerID, questionnaireID)
	if err != nil {
		h.logWarn(r.Context(), "lifecycle transition failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toQuestionnaireView(questionnaire))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), ownerID, questionnaireID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSummaryView(summary))
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	question, err := h.questionnaire.AddQuestion(ctx, ownerID, questionnaireID, req.toInput())
	if err != nil {
		h.logWarn(ctx, "add question failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toQuestionView(question))
}

func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	questionID, err := id.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	question, err := h.questionnaire.UpdateQuestion(ctx, ownerID, questionnaireID, questionID, req.toInput())
	if err != nil {
		h.logWarn(ctx, "update question failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toQuestionView(question))
}

func (h *Handler) handleRemoveQuestion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	questionnaireID, err := id.ParseQuestionnaireID(chi.URLParam(r, "questionnaireID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	questionID, err := id.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.questionnaire.RemoveQuestion(r.Context(), ownerID, questionnaireID, questionID); err != nil {
		h.logWarn(r.Context(), "remove question failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// owner resolves the authenticated owner id set by RequireOwner. A missing or
// malformed id means the middleware chain is misconfigured.
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

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
