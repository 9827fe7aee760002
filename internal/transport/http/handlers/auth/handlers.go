package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfsys/internal/domain/auth"
	"perfsys/internal/transport/http/api"
	"perfsys/internal/transport/http/middleware"
)

type Handler struct {
	DB       *pgxpool.Pool
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(db *pgxpool.Pool, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{DB: db, Secret: secret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	var userID, roleName, hash string
	err := h.DB.QueryRow(r.Context(), `
    SELECT u.id, r.name, u.password_hash
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.email = $1 AND u.status = 'active'
  `, payload.Email).Scan(&userID, &roleName, &hash)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	var employeeID string
	err = h.DB.QueryRow(r.Context(), `
    SELECT id FROM employees WHERE user_id = $1 AND NOT is_deleted
  `, userID).Scan(&employeeID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.Warn("login employee lookup failed", "err", err)
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     userID,
		EmployeeID: employeeID,
		RoleName:   roleName,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	api.Success(w, map[string]any{
		"token":      token,
		"role":       roleName,
		"employeeId": employeeID,
	}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var email string
	if err := h.DB.QueryRow(r.Context(), "SELECT email FROM users WHERE id = $1", user.UserID).Scan(&email); err != nil {
		api.Fail(w, http.StatusInternalServerError, "me_failed", "failed to load profile", requestID)
		return
	}

	api.Success(w, map[string]any{
		"userId":      user.UserID,
		"email":       email,
		"role":        user.RoleName,
		"employeeId":  user.EmployeeID,
		"permissions": auth.RolePermissions[user.RoleName],
	}, requestID)
}
