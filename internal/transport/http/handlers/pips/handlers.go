package pipshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfsys/internal/domain/audit"
	"perfsys/internal/domain/auth"
	"perfsys/internal/domain/pips"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
	"perfsys/internal/transport/http/shared"
)

type Handler struct {
	Service *pips.Service
	Audit   *audit.Service
}

func NewHandler(service *pips.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pips", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPIPsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPIPsWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPIPsRead)).Get("/{pipID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPIPsWrite)).Put("/{pipID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermPIPsWrite)).Post("/{pipID}/transition", h.handleTransition)
		r.With(middleware.RequirePermission(auth.PermPIPsWrite)).Delete("/{pipID}", h.handleDelete)
	})
}

type pipPayload struct {
	EmployeeID string `json:"employeeId"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	Actions    string `json:"actions"`
	StartDate  string `json:"startDate"`
	DueDate    string `json:"dueDate"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := pips.Filter{EmployeeID: r.URL.Query().Get("employeeId")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := pips.ParseStatus(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), requestID)
			return
		}
		filter.Status = status
	}

	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pip_list_failed", "failed to list improvement plans", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pip, err := h.Service.Get(r.Context(), chi.URLParam(r, "pipID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, pip, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload pipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	pip, err := h.Service.Create(r.Context(), draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "pips.create", pip.ID, nil, pip)
	api.Created(w, pip, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	pipID := chi.URLParam(r, "pipID")

	var payload pipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	pip, err := h.Service.Update(r.Context(), pipID, draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "pips.update", pip.ID, nil, pip)
	api.Success(w, pip, requestID)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	pipID := chi.URLParam(r, "pipID")

	var payload struct {
		Status  string `json:"status"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	next, err := pips.ParseStatus(payload.Status)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		return
	}

	pip, err := h.Service.Transition(r.Context(), pipID, next, payload.Outcome, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "pips.transition", pip.ID, nil, pip)
	api.Success(w, pip, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	pipID := chi.URLParam(r, "pipID")

	deleted, err := h.Service.Delete(r.Context(), pipID, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if deleted {
		h.audit(r, user.UserID, "pips.delete", pipID, nil, nil)
	}
	api.Success(w, map[string]any{"deleted": deleted}, requestID)
}

func draftFromPayload(payload pipPayload, w http.ResponseWriter, requestID string) (pips.Draft, bool) {
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("title", payload.Title, "is required")

	draft := pips.Draft{
		EmployeeID: payload.EmployeeID,
		Title:      payload.Title,
		Reason:     payload.Reason,
		Actions:    payload.Actions,
	}
	if payload.StartDate != "" {
		if start, ok := v.Date("startDate", payload.StartDate); ok {
			draft.StartDate = start
		}
	}
	if payload.DueDate != "" {
		if due, ok := v.Date("dueDate", payload.DueDate); ok {
			draft.DueDate = due
		}
	}
	v.DateOrder("startDate", draft.StartDate, "dueDate", draft.DueDate)
	if v.Reject(w, requestID) {
		return pips.Draft{}, false
	}
	return draft, true
}

func (h *Handler) audit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "pip", entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, pips.ErrPIPNotFound):
		api.Fail(w, http.StatusNotFound, "pip_not_found", "improvement plan not found", requestID)
	case errors.Is(err, pips.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, pips.ErrInvalidState):
		api.Fail(w, http.StatusBadRequest, "invalid_operation", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "pip_operation_failed", "operation failed", requestID)
	}
}
