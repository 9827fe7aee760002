package traininghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"perfsys/internal/domain/audit"
	"perfsys/internal/domain/auth"
	"perfsys/internal/domain/training"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
	"perfsys/internal/transport/http/shared"
)

type Handler struct {
	Service *training.Service
	Audit   *audit.Service
}

func NewHandler(service *training.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/training", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTrainingRead)).Get("/results", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTrainingWrite)).Post("/results", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermTrainingRead)).Get("/results/{resultID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTrainingWrite)).Put("/results/{resultID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermTrainingWrite)).Delete("/results/{resultID}", h.handleDelete)
	})
}

type resultPayload struct {
	EmployeeID     string  `json:"employeeId"`
	CourseName     string  `json:"courseName"`
	Provider       string  `json:"provider"`
	Score          *string `json:"score"`
	CompletedAt    string  `json:"completedAt"`
	CertificateURL string  `json:"certificateUrl"`
}

func draftFromPayload(payload resultPayload, w http.ResponseWriter, requestID string) (training.Draft, bool) {
	v := shared.NewValidator()
	v.Required("courseName", payload.CourseName, "is required")

	draft := training.Draft{
		EmployeeID:     payload.EmployeeID,
		CourseName:     payload.CourseName,
		Provider:       payload.Provider,
		CertificateURL: payload.CertificateURL,
	}
	if payload.Score != nil {
		score, err := decimal.NewFromString(*payload.Score)
		if err != nil {
			v.Add("score", "must be a decimal number")
		} else {
			draft.Score = &score
		}
	}
	if payload.CompletedAt != "" {
		if completed, ok := v.Date("completedAt", payload.CompletedAt); ok {
			draft.CompletedAt = &completed
		}
	}
	if v.Reject(w, requestID) {
		return training.Draft{}, false
	}
	return draft, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := training.Filter{EmployeeID: r.URL.Query().Get("employeeId")}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "year must be a number", requestID)
			return
		}
		filter.Year = year
	}
	if r.URL.Query().Get("completed") == "true" {
		filter.Completed = true
	}

	if user, ok := middleware.GetUser(r.Context()); ok && user.RoleName == auth.RoleEmployee {
		filter.EmployeeID = user.EmployeeID
	}

	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "training_list_failed", "failed to list training results", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	result, err := h.Service.Get(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload resultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee id required", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	result, err := h.Service.Create(r.Context(), draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "training.create", result.ID, nil, result)
	api.Created(w, result, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	resultID := chi.URLParam(r, "resultID")

	var payload resultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	result, err := h.Service.Update(r.Context(), resultID, draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "training.update", result.ID, nil, result)
	api.Success(w, result, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	resultID := chi.URLParam(r, "resultID")

	deleted, err := h.Service.Delete(r.Context(), resultID, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if deleted {
		h.audit(r, user.UserID, "training.delete", resultID, nil, nil)
	}
	api.Success(w, map[string]any{"deleted": deleted}, requestID)
}

func (h *Handler) audit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "training_result", entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, training.ErrResultNotFound):
		api.Fail(w, http.StatusNotFound, "training_result_not_found", "training result not found", requestID)
	case errors.Is(err, training.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, training.ErrScoreOutOfRange):
		api.Fail(w, http.StatusBadRequest, "invalid_operation", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "training_operation_failed", "operation failed", requestID)
	}
}
