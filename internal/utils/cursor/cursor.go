package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Position marks where an interrupted pull page stopped inside one kind:
// the next page resumes strictly after (Time, EntityID) for that kind.
type Position struct {
	Kind     string    `json:"kind"`
	Time     time.Time `json:"time"`
	EntityID string    `json:"entity_id"`
}

// Token is the opaque pull cursor. Watermark is the server_modified
// lower bound every kind has been fully synced through. Resume is set
// when the previous page was cut short; it pins the exact row the page
// stopped at, so rows sharing the boundary timestamp (or living in
// kinds the page never reached) are not skipped.
type Token struct {
	Watermark time.Time `json:"watermark"`
	Resume    *Position `json:"resume,omitempty"`
}

// Encode creates an opaque base64 token. Clients hold it between pulls
// and never inspect it.
func Encode(token Token) string {
	raw, err := json.Marshal(token)
	if err != nil {
		// Token is a closed struct of marshalable fields.
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a token back into its cursor state. The empty token
// decodes to the zero Token, meaning "everything from the beginning".
func Decode(s string) (Token, error) {
	if s == "" {
		return Token{}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("invalid sync cursor (base64 decode): %w", err)
	}
	var token Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return Token{}, fmt.Errorf("invalid sync cursor (token parse): %w", err)
	}
	return token, nil
}
