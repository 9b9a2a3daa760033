package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/tunefave/backend/internal/db"
	apperrors "github.com/tunefave/backend/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserInfo `json:"user,omitempty"`
}

type Handlers struct {
	authService *Service
}

func NewHandlers(authService *Service) *Handlers {
	return &Handlers{authService: authService}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := validateRegisterRequest(&req); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	resp, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return apperrors.EmailExists()
		}
		if errors.Is(err, db.ErrUsernameExists) {
			return apperrors.UsernameExists()
		}
		return apperrors.InternalError("failed to create user").WithCause(err)
	}

	SetSessionCookie(w, resp.Token)
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusCreated, resp)
	return nil
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return apperrors.ValidationError("email and password are required")
	}

	resp, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return apperrors.InvalidCredentials()
		}
		return apperrors.InternalError("login failed").WithCause(err)
	}

	SetSessionCookie(w, resp.Token)
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, resp)
	return nil
}

// Logout clears the client-held cookie. The token itself stays valid until
// expiry since there is no server-side revocation.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) error {
	ClearSessionCookie(w)
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, map[string]string{
		"message": "logged out",
	})
	return nil
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) error {
	userCtx := GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	user, err := h.authService.GetUserByID(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.UserNotFound()
		}
		return apperrors.DatabaseError("failed to load user").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, map[string]*UserInfo{
		"user": userInfo(user),
	})
	return nil
}

// Check reports whether the request carries a valid session token. Unlike
// the protected routes it never fails: an anonymous caller gets
// authenticated=false with a 200.
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) error {
	resp := CheckResponse{}

	if tokenString := ExtractToken(r); tokenString != "" {
		if claims, err := h.authService.VerifyToken(tokenString); err == nil {
			resp.Authenticated = true
			resp.User = &UserInfo{
				ID:       claims.UserID,
				Username: claims.Username,
				Email:    claims.Email,
			}
		}
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, resp)
	return nil
}

func validateRegisterRequest(req *RegisterRequest) error {
	if req.Username == "" {
		return errors.New("username is required")
	}
	if len(req.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(req.Username) > 50 {
		return errors.New("username must be at most 50 characters")
	}
	if req.Email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(req.Email) {
		return errors.New("invalid email format")
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	if len(req.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
