package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	sessionguard "github.com/gallerium/sessionguard"
	"github.com/gallerium/sessionguard/middleware"
	"github.com/gallerium/sessionguard/permission"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success     bool           `json:"success"`
	CSRFToken   string         `json:"csrfToken"`
	Permissions permission.Set `json:"permissions"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := s.engine.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, sessionguard.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.log.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setSessionCookie(w, result.SessionID, result.ExpiresAt)
	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		CSRFToken:   result.CSRFToken,
		Permissions: result.Permissions,
	})
}

// handleLogout revokes whatever session the cookie names and clears the
// cookie. It answers 200 even without a session so clients can always
// converge on "logged out".
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookie.Name); err == nil && cookie.Value != "" {
		s.engine.Logout(r.Context(), cookie.Value)
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type meResponse struct {
	Authenticated bool           `json:"authenticated"`
	Username      string         `json:"username"`
	CSRFToken     string         `json:"csrfToken"`
	Permissions   permission.Set `json:"permissions"`
}

// handleMe lets a page recover its CSRF token and permission set after a
// reload, when the cookie survived but the script state did not.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Authenticated: true,
		Username:      identity.Username,
		CSRFToken:     identity.CSRFToken,
		Permissions:   identity.Permissions,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := s.engine.ChangePassword(r.Context(), identity.Username,
		req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, sessionguard.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, "current password incorrect")
	case errors.Is(err, sessionguard.ErrPasswordPolicy):
		writeError(w, http.StatusBadRequest, "new password rejected by policy")
	default:
		s.log.Error().Err(err).Msg("password change failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type createUserRequest struct {
	Username    string         `json:"username"`
	Password    string         `json:"password"`
	Permissions permission.Set `json:"permissions"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := s.engine.CreateUser(r.Context(), req.Username, req.Password, req.Permissions)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
	case errors.Is(err, sessionguard.ErrUserExists):
		writeError(w, http.StatusConflict, "username taken")
	case errors.Is(err, sessionguard.ErrUsernameInvalid):
		writeError(w, http.StatusBadRequest, "invalid username")
	case errors.Is(err, sessionguard.ErrPasswordPolicy):
		writeError(w, http.StatusBadRequest, "password rejected by policy")
	default:
		s.log.Error().Err(err).Msg("user creation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := httprouter.ParamsFromContext(r.Context()).ByName("username")

	err := s.engine.DeleteUser(r.Context(), username)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, sessionguard.ErrRootProtected):
		writeError(w, http.StatusForbidden, "cannot delete this user")
	case errors.Is(err, sessionguard.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "no such user")
	default:
		s.log.Error().Err(err).Msg("user deletion failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	username := httprouter.ParamsFromContext(r.Context()).ByName("username")

	var perms permission.Set
	if err := json.NewDecoder(r.Body).Decode(&perms); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := s.engine.UpdatePermissions(r.Context(), username, perms)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, sessionguard.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "no such user")
	default:
		s.log.Error().Err(err).Msg("permission update failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
