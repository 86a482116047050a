package api

import (
	"encoding/json"
	"net/http"

	"loungebook/internal/auth"
	"loungebook/internal/metrics"
)

// SessionRequest is the request body for the session endpoints.
type SessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// SessionResponse is the response for the session endpoints.
type SessionResponse struct {
	Success bool          `json:"success"`
	User    *auth.Account `json:"user,omitempty"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// handleSession dispatches the auth-provider routes:
//
//	POST /session/login
//	POST /session/register
//	POST /session/logout
//	POST /session/reset-password
//	GET  /session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session")

	switch {
	case r.URL.Path == "/session" && r.Method == http.MethodGet:
		s.handleCurrentUser(w, r)
	case r.Method != http.MethodPost:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	case r.URL.Path == "/session/login":
		s.handleSessionLogin(w, r)
	case r.URL.Path == "/session/register":
		s.handleSessionRegister(w, r)
	case r.URL.Path == "/session/logout":
		s.handleSessionLogout(w, r)
	case r.URL.Path == "/session/reset-password":
		s.handleSessionReset(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := s.provider.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, User: account})
}

func (s *Server) handleSessionRegister(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := s.provider.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Success: true, User: account})
}

func (s *Server) handleSessionLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.Logout(r.Context()); err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.provider.ResetPassword(r.Context(), req.Email); err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.provider.CurrentUser(r.Context())
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, User: account})
}

// writeAuthError maps provider errors onto HTTP statuses, keeping the
// Firebase-style code in the body.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	authErr, ok := auth.AsError(err)
	if !ok {
		s.log.Error().Err(err).Msg("auth provider error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusBadRequest
	switch authErr {
	case auth.ErrUserNotFound:
		status = http.StatusNotFound
	case auth.ErrWrongPassword, auth.ErrNotSignedIn:
		status = http.StatusUnauthorized
	case auth.ErrEmailInUse:
		status = http.StatusConflict
	}
	writeJSON(w, status, SessionResponse{Success: false, Code: authErr.Code, Error: authErr.Message})
}
