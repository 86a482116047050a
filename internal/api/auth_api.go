package api

import (
	"encoding/json"
	"net/http"

	"loungebook/internal/metrics"
	"loungebook/internal/models"
)

// AuthRequest is the request body for POST /auth.
type AuthRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// AuthResponse is the response for POST /auth.
type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	User      *models.User `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

// handleAuth creates the user on first login and updates it afterwards.
// POST /auth
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("auth")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, isNew, err := s.directory.LoginOrRegister(r.Context(), req.Email, req.Name, req.Contact)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	metrics.IncLogin(isNew)

	status := http.StatusOK
	message := "Login successful"
	if isNew {
		status = http.StatusCreated
		message = "Account created successfully"
	}
	writeJSON(w, status, AuthResponse{
		Success:   true,
		Message:   message,
		User:      user,
		IsNewUser: isNew,
	})
}
