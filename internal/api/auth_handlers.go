package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sindrigils/restfulapi-anime/internal/auth"
	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

// UserStore is the persistence surface the auth endpoints need.
type UserStore interface {
	InsertUser(ctx context.Context, u *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthHandler serves user registration and token issuance.
type AuthHandler struct {
	Users  UserStore
	Issuer *auth.TokenIssuer
}

// RegisterRoutes registers the auth routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/users", h.CreateUser)
	mux.HandleFunc("POST /auth/token", h.IssueToken)
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser handles POST /auth/users
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON payload"})
		return
	}

	if err := domain.ValidateNewUser(req.Username, req.Email, req.Password); err != nil {
		writeError(w, err, "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err, "")
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.Users.InsertUser(r.Context(), user); err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user created successfully"})
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IssueToken handles POST /auth/token. Accepts JSON or form-encoded
// username/password. Any mismatch gets the same 401; the response never
// distinguishes an unknown user from a wrong password.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	switch r.Header.Get("Content-Type") {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form payload"})
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON payload"})
			return
		}
	}

	user, err := h.Users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "incorrect username or password"})
		return
	}

	token, err := h.Issuer.Issue(user.Username, user.ID)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
