package nmsmock

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}

	token, expiresAt, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.logger.Warn("Login rejected", "username", req.Username)
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// handleListCredentials handles GET /api/v1/credentials
func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	profiles := s.store.ListCredentialProfiles()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":  profiles,
		"total": len(profiles),
	})
}

// handleCreateCredential handles POST /api/v1/credentials
func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Protocol    string `json:"protocol"`
		Payload     string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}
	if input.Name == "" || input.Protocol == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Name and Protocol are required")
		return
	}

	profile := s.store.CreateCredentialProfile(&CredentialProfile{
		Name:        input.Name,
		Description: input.Description,
		Protocol:    input.Protocol,
		Payload:     input.Payload,
	})
	s.logger.Info("Credential profile created", "id", profile.ID, "name", profile.Name)
	respondJSON(w, http.StatusCreated, profile)
}

// handleCreateDiscovery handles POST /api/v1/discovery and
// POST /api/v1/discovery_profiles
func (s *Server) handleCreateDiscovery(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name                string `json:"name"`
		Target              string `json:"target"`
		Port                int    `json:"port"`
		CredentialProfileID string `json:"credential_profile_id"`
		AutoProvision       bool   `json:"auto_provision"`
		AutoRun             bool   `json:"auto_run"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}
	if input.Name == "" || input.Target == "" || input.CredentialProfileID == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Name, Target and CredentialProfileID are required")
		return
	}
	if s.store.GetCredentialProfile(input.CredentialProfileID) == nil {
		respondError(w, r, http.StatusBadRequest, "UNKNOWN_CREDENTIAL", "Referenced credential profile does not exist")
		return
	}

	profile := s.store.CreateDiscoveryProfile(&DiscoveryProfile{
		Name:                input.Name,
		Target:              input.Target,
		Port:                input.Port,
		CredentialProfileID: input.CredentialProfileID,
		AutoProvision:       input.AutoProvision,
		AutoRun:             input.AutoRun,
	})
	s.logger.Info("Discovery profile created",
		"id", profile.ID,
		"name", profile.Name,
		"target", profile.Target,
		"auto_provision", profile.AutoProvision,
		"auto_run", profile.AutoRun,
	)
	respondJSON(w, http.StatusCreated, profile)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends a standardized error response
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetReqID(r.Context()),
		},
	}
	json.NewEncoder(w).Encode(response)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
