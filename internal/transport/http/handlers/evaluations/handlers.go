package evaluationshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"perfsys/internal/domain/audit"
	"perfsys/internal/domain/auth"
	"perfsys/internal/domain/core"
	"perfsys/internal/domain/evaluations"
	"perfsys/internal/domain/notifications"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
	"perfsys/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluations.Service
	Core    *core.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluations.Service, coreSvc *core.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Put("/{evaluationID}/scores", h.handleScores)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Post("/{evaluationID}/items", h.handleAddItem)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Delete("/{evaluationID}/items/{itemID}", h.handleDeleteItem)
		r.With(middleware.RequirePermission(auth.PermEvaluationsFinalize)).Post("/{evaluationID}/finalize", h.handleFinalize)
		r.With(middleware.RequirePermission(auth.PermEvaluationsApprove)).Post("/{evaluationID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead)).Post("/{evaluationID}/objections", h.handleObject)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead)).Get("/{evaluationID}/objections", h.handleListObjections)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Put("/objections/{objectionID}", h.handleResolveObjection)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead)).Get("/{evaluationID}/report", h.handleReport)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := evaluations.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Period:     r.URL.Query().Get("period"),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		evalType, err := evaluations.ParseType(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), requestID)
			return
		}
		filter.Type = evalType
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := evaluations.ParseStatus(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), requestID)
			return
		}
		filter.Status = status
	}

	if user, ok := middleware.GetUser(r.Context()); ok && user.RoleName == auth.RoleEmployee {
		filter.EmployeeID = user.EmployeeID
	}

	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", requestID)
		return
	}
	api.Success(w, shared.NewPage(list, total, page), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	eval, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, eval, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		EmployeeID string `json:"employeeId"`
		Period     string `json:"period"`
		Type       string `json:"evaluationType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("period", payload.Period, "is required")
	v.Enum("evaluationType", payload.Type, []string{
		string(evaluations.TypeAnnual), string(evaluations.TypeMidYear), string(evaluations.TypeQuarterly),
	}, "must be annual, mid_year or quarterly")
	if v.Reject(w, requestID) {
		return
	}
	evalType, err := evaluations.ParseType(payload.Type)
	if err != nil {
		evalType = evaluations.TypeAnnual
	}

	eval, err := h.Service.Create(r.Context(), evaluations.Draft{
		EmployeeID: payload.EmployeeID,
		Period:     payload.Period,
		Type:       evalType,
	}, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.create", eval.ID, nil, eval)
	h.notifyEmployee(r, eval.EmployeeID, notifications.TypeEvaluationCreated,
		"Evaluation opened", fmt.Sprintf("A %s evaluation for %s was opened.", eval.Type, eval.Period))
	api.Created(w, eval, requestID)
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		GoalsScore       *string `json:"goalsScore"`
		BehaviorScore    *string `json:"behaviorScore"`
		InitiativesScore *string `json:"initiativesScore"`
		ManagerNotes     string  `json:"managerNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	update := evaluations.ScoreUpdate{ManagerNotes: payload.ManagerNotes}
	var ok bool
	if update.GoalsScore, ok = parseScore(w, "goalsScore", payload.GoalsScore, requestID); !ok {
		return
	}
	if update.BehaviorScore, ok = parseScore(w, "behaviorScore", payload.BehaviorScore, requestID); !ok {
		return
	}
	if update.InitiativesScore, ok = parseScore(w, "initiativesScore", payload.InitiativesScore, requestID); !ok {
		return
	}

	eval, err := h.Service.UpdateScores(r.Context(), evaluationID, update, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.score", eval.ID, nil, update)
	api.Success(w, eval, requestID)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		ItemType    string  `json:"itemType"`
		RefID       string  `json:"refId"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Weight      *string `json:"weight"`
		Score       string  `json:"score"`
		Notes       string  `json:"notes"`
		EvidenceURL string  `json:"evidenceUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "is required")
	v.Required("itemType", payload.ItemType, "is required")
	v.Required("score", payload.Score, "is required")
	if v.Reject(w, requestID) {
		return
	}

	score, err := decimal.NewFromString(payload.Score)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "score must be a decimal number", requestID)
		return
	}
	draft := evaluations.ItemDraft{
		ItemType:    payload.ItemType,
		RefID:       payload.RefID,
		Title:       payload.Title,
		Description: payload.Description,
		Score:       score,
		Notes:       payload.Notes,
		EvidenceURL: payload.EvidenceURL,
	}
	if payload.Weight != nil {
		weight, err := decimal.NewFromString(*payload.Weight)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "weight must be a decimal number", requestID)
			return
		}
		draft.Weight = &weight
	}

	eval, err := h.Service.AddItem(r.Context(), evaluationID, draft, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.item.add", evaluationID, nil, draft)
	api.Created(w, eval, requestID)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")
	itemID := chi.URLParam(r, "itemID")

	deleted, err := h.Service.DeleteItem(r.Context(), evaluationID, itemID, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if deleted {
		h.audit(r, user.UserID, "evaluations.item.delete", evaluationID, nil, map[string]any{"itemId": itemID})
	}
	api.Success(w, map[string]any{"deleted": deleted}, requestID)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		ManagerNotes string `json:"managerNotes"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}
	}

	result, err := h.Service.Finalize(r.Context(), evaluationID, user.UserID, payload.ManagerNotes)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.finalize", evaluationID, nil, result)
	if eval, err := h.Service.Get(r.Context(), evaluationID); err == nil {
		body := fmt.Sprintf("Your %s evaluation was finalized with rating %s.", eval.Period, result.FinalRating)
		h.notifyEmployee(r, eval.EmployeeID, notifications.TypeEvaluationFinalized, "Evaluation finalized", body)
		if result.PIPCreated {
			h.notifyEmployee(r, eval.EmployeeID, notifications.TypePIPCreated,
				"Improvement plan opened", "A performance improvement plan was opened following your evaluation.")
		}
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	eval, err := h.Service.Approve(r.Context(), chi.URLParam(r, "evaluationID"), user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.approve", eval.ID, nil, eval)
	h.notifyEmployee(r, eval.EmployeeID, notifications.TypeEvaluationApproved,
		"Evaluation approved", fmt.Sprintf("Your %s evaluation was approved.", eval.Period))
	api.Success(w, eval, requestID)
}

func (h *Handler) handleObject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("reason", payload.Reason, "is required")
	if v.Reject(w, requestID) {
		return
	}

	obj, err := h.Service.Object(r.Context(), evaluationID, user.EmployeeID, payload.Reason, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.object", obj.ID, nil, obj)
	api.Created(w, obj, requestID)
}

func (h *Handler) handleListObjections(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Service.Objections(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleResolveObjection(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Status     string `json:"status"`
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	obj, err := h.Service.ResolveObjection(r.Context(), chi.URLParam(r, "objectionID"), payload.Status, payload.Resolution, user.UserID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.audit(r, user.UserID, "evaluations.objection.resolve", obj.ID, nil, obj)
	h.notifyEmployee(r, obj.EmployeeID, notifications.TypeObjectionResolved,
		"Objection resolved", fmt.Sprintf("Your objection was resolved as %s.", obj.Status))
	api.Success(w, obj, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	eval, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	employeeName := eval.EmployeeID
	if h.Core != nil {
		if emp, err := h.Core.GetEmployee(r.Context(), eval.EmployeeID); err == nil {
			employeeName = emp.FullName()
		}
	}

	pdf, err := evaluations.RenderReport(eval, employeeName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation-`+eval.ID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("report write failed", "err", err)
	}
}

// parseScore maps an optional string field to an optional decimal score.
func parseScore(w http.ResponseWriter, field string, raw *string, requestID string) (*decimal.Decimal, bool) {
	if raw == nil {
		return nil, true
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", field+" must be a decimal number", requestID)
		return nil, false
	}
	return &value, true
}

// notifyEmployee resolves the employee's user account, if any, and posts an
// in-app notification.
func (h *Handler) notifyEmployee(r *http.Request, employeeID, ntype, title, body string) {
	if h.Notify == nil || h.Core == nil || employeeID == "" {
		return
	}
	emp, err := h.Core.GetEmployee(r.Context(), employeeID)
	if err != nil || emp.UserID == "" {
		return
	}
	if err := h.Notify.Create(r.Context(), emp.UserID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "err", err)
	}
}

func (h *Handler) audit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, "evaluation", entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, evaluations.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "evaluation_not_found", "evaluation not found", requestID)
	case errors.Is(err, evaluations.ErrObjectionNotFound):
		api.Fail(w, http.StatusNotFound, "objection_not_found", "objection not found", requestID)
	case errors.Is(err, evaluations.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, evaluations.ErrObjectionForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, evaluations.ErrDuplicate):
		api.Fail(w, http.StatusBadRequest, "duplicate_evaluation", err.Error(), requestID)
	case errors.Is(err, evaluations.ErrAlreadyFinalized),
		errors.Is(err, evaluations.ErrScoresIncomplete),
		errors.Is(err, evaluations.ErrScoreOutOfRange),
		errors.Is(err, evaluations.ErrInvalidState):
		api.Fail(w, http.StatusBadRequest, "invalid_operation", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "evaluation_operation_failed", "operation failed", requestID)
	}
}
