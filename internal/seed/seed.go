// Package seed loads the discovery seed file: an ordered JSON array of
// target hosts and their credentials used to bootstrap the NMS inventory.
package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProtocolWinRM is the credential protocol every seeded profile uses.
const ProtocolWinRM = "winrm"

// DefaultNamePrefix is used when an item carries no request_id.
const DefaultNamePrefix = "imported"

// Item is one entry of the seed file.
type Item struct {
	RequestID   string          `json:"request_id"`
	Target      string          `json:"target" validate:"required"`
	Port        int             `json:"port" validate:"required,min=1,max=65535"`
	Credentials json.RawMessage `json:"credentials" validate:"required"`
}

var validate = validator.New()

// NamePrefix returns the request_id, or DefaultNamePrefix when absent.
func (i Item) NamePrefix() string {
	if i.RequestID == "" {
		return DefaultNamePrefix
	}
	return i.RequestID
}

// CredentialName derives the credential profile name for this item.
func (i Item) CredentialName() string {
	return i.NamePrefix() + "_creds"
}

// DiscoveryName derives the discovery profile name for this item.
func (i Item) DiscoveryName() string {
	return i.NamePrefix() + "_discovery"
}

// CredentialPayload serializes the item's credentials to the string form the
// credential API expects: field order from the seed file is preserved and
// separators are normalized to ", " and ": ", the byte form the original
// importer produced.
func (i Item) CredentialPayload() (string, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, i.Credentials); err != nil {
		return "", fmt.Errorf("failed to serialize credentials: %w", err)
	}

	// Re-space the compacted JSON. Colons and commas inside string literals
	// must pass through untouched.
	var out strings.Builder
	out.Grow(compact.Len())
	inString := false
	escaped := false
	for _, b := range compact.Bytes() {
		out.WriteByte(b)
		switch {
		case escaped:
			escaped = false
		case inString:
			if b == '\\' {
				escaped = true
			} else if b == '"' {
				inString = false
			}
		case b == '"':
			inString = true
		case b == ':' || b == ',':
			out.WriteByte(' ')
		}
	}
	return out.String(), nil
}

// Load reads and parses a seed file. Any IO, parse, or field error is fatal
// to the run; there is no partial recovery at load time.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for idx, item := range items {
		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("seed file %s item %d: %w", path, idx, err)
		}
	}

	return items, nil
}

// Resolve returns the first of the candidate paths that exists on disk.
// It is used by the authenticated variant, which prefers the Windows-specific
// seed file and falls back to the generic one.
func Resolve(candidates ...string) (string, error) {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no seed file found (tried %v)", candidates)
}
