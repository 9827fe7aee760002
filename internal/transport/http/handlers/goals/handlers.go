package goalshandler

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
	"perfsys/internal/domain/goals"
	"perfsys/internal/domain/notifications"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
	"perfsys/internal/transport/http/shared"
)

type Handler struct {
	Service *goals.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *goals.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermGoalsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermGoalsRead)).Get("/{goalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite)).Put("/{goalID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite)).Delete("/{goalID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite)).Put("/{goalID}/progress", h.handleProgress)
		r.With(middleware.RequirePermission(auth.PermGoalsApprove)).Post("/{goalID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermGoalsApprove)).Post("/{goalID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermGoalsRead)).Get("/validate-weights", h.handleValidateWeights)
	})
}

type goalPayload struct {
	EmployeeID      string `json:"employeeId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Category        string `json:"category"`
	Weight          string `json:"weight"`
	TargetValue     string `json:"targetValue"`
	MeasurementUnit string `json:"measurementUnit"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
}

// draftFromPayload validates the payload and assembles the domain draft.
func draftFromPayload(payload goalPayload, w http.ResponseWriter, requestID string) (goals.Draft, bool) {
	v := shared.NewValidator()
	v.Required("title", payload.Title, "is required")
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Enum("type", payload.Type, []string{
		string(goals.TypeStrategic), string(goals.TypeOperational), string(goals.TypeDevelopment),
	}, "must be strategic, operational or development")

	weight, err := decimal.NewFromString(payload.Weight)
	if err != nil {
		v.Add("weight", "must be a decimal number")
	}
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, requestID) {
		return goals.Draft{}, false
	}

	goalType, err := goals.ParseType(payload.Type)
	if err != nil {
		goalType = goals.TypeOperational
	}
	return goals.Draft{
		EmployeeID:      payload.EmployeeID,
		Title:           payload.Title,
		Description:     payload.Description,
		Type:            goalType,
		Category:        payload.Category,
		Weight:          weight,
		TargetValue:     payload.TargetValue,
		MeasurementUnit: payload.MeasurementUnit,
		StartDate:       start,
		EndDate:         end,
	}, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := goals.Filter{EmployeeID: r.URL.Query().Get("employeeId")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := goals.ParseStatus(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), requestID)
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		goalType, err := goals.ParseType(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), requestID)
			return
		}
		filter.Type = goalType
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "year must be a number", requestID)
			return
		}
		filter.Year = year
	}

	// Employees see their own goals only.
	if user, ok := middleware.GetUser(r.Context()); ok && user.RoleName == auth.RoleEmployee {
		filter.EmployeeID = user.EmployeeID
	}

	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_list_failed", "failed to list goals", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	goal, err := h.Service.Get(r.Context(), chi.URLParam(r, "goalID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, goal, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.EmployeeID == "" {
		payload.EmployeeID = user.EmployeeID
	}

	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	goal, err := h.Service.Create(r.Context(), draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "goals.create", goal.ID, nil, goal)
	api.Created(w, goal, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	before, err := h.Service.Get(r.Context(), goalID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	// EmployeeID is pinned server-side on update.
	payload.EmployeeID = before.EmployeeID
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	goal, err := h.Service.Update(r.Context(), goalID, draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "goals.update", goal.ID, before, goal)
	api.Success(w, goal, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	deleted, err := h.Service.Delete(r.Context(), goalID, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if deleted {
		h.audit(r, user.UserID, "goals.delete", goalID, nil, nil)
	}
	api.Success(w, map[string]any{"deleted": deleted}, requestID)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	var payload struct {
		Progress string `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	progress, err := decimal.NewFromString(payload.Progress)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "progress must be a decimal number", requestID)
		return
	}

	goal, err := h.Service.UpdateProgress(r.Context(), goalID, progress, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	if goal.Status == goals.StatusCompleted {
		h.notify(r, user.UserID, notifications.TypeGoalCompleted, "Goal completed", goal.Title)
	}
	api.Success(w, goal, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	goal, err := h.Service.Decide(r.Context(), goalID, approved, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	action, ntype, title := "goals.approve", notifications.TypeGoalApproved, "Goal approved"
	if !approved {
		action, ntype, title = "goals.reject", notifications.TypeGoalRejected, "Goal rejected"
	}
	h.audit(r, user.UserID, action, goal.ID, nil, goal)
	h.notify(r, user.UserID, ntype, title, goal.Title)
	api.Success(w, goal, requestID)
}

func (h *Handler) handleValidateWeights(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		if user, ok := middleware.GetUser(r.Context()); ok {
			employeeID = user.EmployeeID
		}
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "employee id required", requestID)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "year must be a number", requestID)
		return
	}

	complete, total, err := h.Service.ValidateWeights(r.Context(), employeeID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "weight_check_failed", "failed to validate weights", requestID)
		return
	}
	api.Success(w, map[string]any{
		"employeeId": employeeID,
		"year":       year,
		"total":      total,
		"complete":   complete,
	}, requestID)
}

func (h *Handler) audit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "goal", entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, userID, ntype, title, body string) {
	if h.Notify == nil {
		return
	}
	if err := h.Notify.Create(r.Context(), userID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "err", err)
	}
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, goals.ErrGoalNotFound):
		api.Fail(w, http.StatusNotFound, "goal_not_found", "goal not found", requestID)
	case errors.Is(err, goals.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, goals.ErrWeightBudgetExceeded),
		errors.Is(err, goals.ErrWeightOutOfRange),
		errors.Is(err, goals.ErrProgressOutOfRange),
		errors.Is(err, goals.ErrInvalidState):
		api.Fail(w, http.StatusBadRequest, "invalid_operation", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "goal_operation_failed", "operation failed", requestID)
	}
}
