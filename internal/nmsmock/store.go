package nmsmock

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CredentialProfile is a stored credential profile.
type CredentialProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Protocol    string    `json:"protocol"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
}

// DiscoveryProfile is a stored discovery profile.
type DiscoveryProfile struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Target              string    `json:"target"`
	Port                int       `json:"port"`
	CredentialProfileID string    `json:"credential_profile_id"`
	AutoProvision       bool      `json:"auto_provision"`
	AutoRun             bool      `json:"auto_run"`
	CreatedAt           time.Time `json:"created_at"`
}

// Store holds all mock data in memory. Profiles are kept in insertion order
// so tests can assert on the sequence of creates.
type Store struct {
	mu          sync.RWMutex
	credentials []*CredentialProfile
	discoveries []*DiscoveryProfile
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// CreateCredentialProfile assigns an ID and stores the profile.
func (s *Store) CreateCredentialProfile(p *CredentialProfile) *CredentialProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	s.credentials = append(s.credentials, p)
	return p
}

// GetCredentialProfile retrieves a credential profile by ID, or nil.
func (s *Store) GetCredentialProfile(id string) *CredentialProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.credentials {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CreateDiscoveryProfile assigns an ID and stores the profile.
func (s *Store) CreateDiscoveryProfile(p *DiscoveryProfile) *DiscoveryProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	s.discoveries = append(s.discoveries, p)
	return p
}

// ListCredentialProfiles returns all credential profiles in creation order.
func (s *Store) ListCredentialProfiles() []*CredentialProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CredentialProfile, len(s.credentials))
	copy(out, s.credentials)
	return out
}

// ListDiscoveryProfiles returns all discovery profiles in creation order.
func (s *Store) ListDiscoveryProfiles() []*DiscoveryProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*DiscoveryProfile, len(s.discoveries))
	copy(out, s.discoveries)
	return out
}
