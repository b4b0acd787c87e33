package domain

import "time"

// Setting is a key/value entry in the credential store. Values flagged
// encrypted are handled by an external encryption collaborator; this
// repository only persists the flag.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	IsEncrypted bool      `json:"isEncrypted"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
