package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
	"go-todo-api/internal/service"
	"go-todo-api/internal/session"
	"go-todo-api/pkg/apierror"
)

var (
	errLoginFailed   = apierror.New("LOGIN_FAILED", "Unable to log in with provided credentials", "", http.StatusBadRequest)
	errRefreshFailed = apierror.New("REFRESH_FAILED", "Unable to refresh the access token", "", http.StatusBadRequest)
	errLogoutFailed  = apierror.New("LOGOUT_FAILED", "Unable to log out", "", http.StatusBadRequest)
)

type AuthHandler struct {
	service *service.AuthService
	cookies *session.Cookies
	audit   *service.AuditService
}

func NewAuthHandler(service *service.AuthService, cookies *session.Cookies, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies, audit: audit}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		h.audit.Log(r.Context(), model.AuditActionRegister, model.AuditActor{Username: payload.Username, IP: middleware.ClientIP(r)}, model.AuditStatusFailure, "user", err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), model.AuditActionRegister, userActor(r, user), model.AuditStatusSuccess, "user:"+user.ID, "")
	writeSuccess(w, http.StatusCreated, user.View(), nil)
}

// Login serves both /login and /token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, errLoginFailed)
		return
	}

	user, pair, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		h.audit.Log(r.Context(), model.AuditActionLogin, model.AuditActor{Username: payload.Username, IP: middleware.ClientIP(r)}, model.AuditStatusFailure, "session", "login failed")
		if errors.Is(err, model.ErrInvalidCredentials) {
			writeError(w, errLoginFailed)
			return
		}
		writeError(w, err)
		return
	}

	h.cookies.Attach(w, pair)
	h.audit.Log(r.Context(), model.AuditActionLogin, userActor(r, user), model.AuditStatusSuccess, "session", "")
	writeSuccess(w, http.StatusOK, model.SessionData{User: user.View()}, nil)
}

// Refresh issues a new access cookie. The refresh cookie is left untouched.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, _ := h.cookies.Extract(r, session.RefreshCookieName)

	user, access, err := h.service.Refresh(r.Context(), raw)
	if err != nil {
		slog.Debug("refresh rejected", "error", err)
		h.audit.Log(r.Context(), model.AuditActionRefresh, actorFromRequest(r), model.AuditStatusFailure, "session", "refresh failed")
		writeError(w, errRefreshFailed)
		return
	}

	h.cookies.AttachAccess(w, access)
	h.audit.Log(r.Context(), model.AuditActionRefresh, userActor(r, user), model.AuditStatusSuccess, "session", "")
	writeSuccess(w, http.StatusOK, map[string]any{"refresh_token": true}, nil)
}

// Logout clears both cookies whether or not the caller holds a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.clearSession(w); err != nil {
		slog.Error("logout failed", "error", err)
		writeError(w, errLogoutFailed)
		return
	}

	if actor := actorFromRequest(r); actor.UserID != "" {
		h.audit.Log(r.Context(), model.AuditActionLogout, actor, model.AuditStatusSuccess, "session", "")
	}
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("clear session cookies: %v", recovered)
		}
	}()

	h.cookies.Clear(w)
	return nil
}

func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"authenticate_success": true}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.View(), nil)
}
