package remotestore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

// Messages exchanged with the store server. List and scalar streams send one
// message per snapshot.
type ListMessage struct {
	Entries []Entry `json:"entries"`
}

type ScalarMessage struct {
	Value json.RawMessage `json:"value"`
}

type CreateResult struct {
	ID string `json:"id"`
}

type ScalarRequest struct {
	Value string `json:"value"`
}

// EncodeNamespace turns a namespace into a single URL path segment. Tokens
// are arbitrary strings and may contain slashes.
func EncodeNamespace(namespace string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(namespace))
}

func DecodeNamespace(segment string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil || len(raw) == 0 {
		return "", fmt.Errorf("bad namespace segment: %w", appErr.ErrInvalid)
	}
	return string(raw), nil
}
