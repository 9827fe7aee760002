package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfsys/internal/domain/audit"
	"perfsys/internal/domain/auth"
	"perfsys/internal/domain/core"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
	"perfsys/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Audit   *audit.Service
}

func NewHandler(service *core.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Delete("/{employeeID}", h.handleDelete)
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateDepartment)
	})
	r.Route("/positions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListPositions)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreatePosition)
	})
}

type employeePayload struct {
	UserID         string `json:"userId"`
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	DepartmentID   string `json:"departmentId"`
	PositionID     string `json:"positionId"`
	ManagerID      string `json:"managerId"`
	HireDate       string `json:"hireDate"`
	Status         string `json:"status"`
}

func draftFromPayload(payload employeePayload, w http.ResponseWriter, requestID string) (core.EmployeeDraft, bool) {
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Enum("status", payload.Status, []string{
		core.EmployeeActive, core.EmployeeOnLeave, core.EmployeeInactive,
	}, "must be active, on_leave or inactive")

	draft := core.EmployeeDraft{
		UserID:         payload.UserID,
		EmployeeNumber: payload.EmployeeNumber,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          payload.Email,
		DepartmentID:   payload.DepartmentID,
		PositionID:     payload.PositionID,
		ManagerID:      payload.ManagerID,
		Status:         payload.Status,
	}
	if payload.HireDate != "" {
		if hired, ok := v.Date("hireDate", payload.HireDate); ok {
			draft.HireDate = &hired
		}
	}
	if v.Reject(w, requestID) {
		return core.EmployeeDraft{}, false
	}
	return draft, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := core.EmployeeFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		ManagerID:    r.URL.Query().Get("managerId"),
		Status:       r.URL.Query().Get("status"),
		Search:       r.URL.Query().Get("search"),
	}
	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.ListEmployees(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), draft)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "employees.create", emp.ID, nil, emp)
	api.Created(w, emp, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	draft, ok := draftFromPayload(payload, w, requestID)
	if !ok {
		return
	}

	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), employeeID, draft)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "employees.update", emp.ID, before, emp)
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	deleted, err := h.Service.DeleteEmployee(r.Context(), employeeID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if deleted {
		h.audit(r, user.UserID, "employees.delete", employeeID, nil, nil)
	}
	api.Success(w, map[string]any{"deleted": deleted}, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.ListDepartments(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name      string `json:"name"`
		ManagerID string `json:"managerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	id, err := h.Service.CreateDepartment(r.Context(), payload.Name, payload.ManagerID)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		return
	}

	h.audit(r, user.UserID, "departments.create", id, nil, payload)
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.ListPositions(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "position_list_failed", "failed to list positions", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Title string `json:"title"`
		Level int    `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	id, err := h.Service.CreatePosition(r.Context(), payload.Title, payload.Level)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		return
	}

	h.audit(r, user.UserID, "positions.create", id, nil, payload)
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) audit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "employee", entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, core.ErrDuplicateEmail), errors.Is(err, core.ErrDuplicateNumber):
		api.Fail(w, http.StatusBadRequest, "duplicate_employee", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	}
}
