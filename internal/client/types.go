package client

import "fmt"

// LoginRequest represents the login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
}

// CredentialProfileRequest is the body of a credential profile create call.
type CredentialProfileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Protocol    string `json:"protocol"`
	Payload     string `json:"payload"`
}

// DiscoveryProfileRequest is the body of a discovery profile create call.
type DiscoveryProfileRequest struct {
	Name                string `json:"name"`
	Target              string `json:"target"`
	Port                int    `json:"port"`
	CredentialProfileID string `json:"credential_profile_id"`
	AutoProvision       bool   `json:"auto_provision"`
	AutoRun             bool   `json:"auto_run"`
}

// CreateResponse is the subset of a create response the seeder uses.
type CreateResponse struct {
	ID string `json:"id"`
}

// APIError is a response with a status outside the accepted set. It carries
// the body so failures can be echoed verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}
