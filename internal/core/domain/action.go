package domain

import "strings"

// ActionKind identifies the user action being orchestrated
type ActionKind string

const (
	ActionUpload ActionKind = "upload"
	ActionDelete ActionKind = "delete"
)

// Identity is the caller identity derived from a verified credential.
// It lives for a single request and is never persisted.
type Identity struct {
	Email string `json:"email"`
}

// Credential is the opaque token presented by the caller
type Credential struct {
	Token string `json:"token"`
}

// ResourceKey identifies the target photo object
type ResourceKey struct {
	Key string `json:"key"`
}

// IsEmpty reports whether the key is missing
func (k ResourceKey) IsEmpty() bool {
	return strings.TrimSpace(k.Key) == ""
}

func (k ResourceKey) String() string {
	return k.Key
}

// ThumbnailKey returns the object key of the resized copy
func (k ResourceKey) ThumbnailKey() string {
	return "resized-" + k.Key
}

// ActionRequest is one inbound user action. It is created once per call and
// must not be mutated after construction.
type ActionRequest struct {
	Kind        ActionKind  `json:"kind"`
	Key         ResourceKey `json:"key"`
	Claim       Identity    `json:"identity_claim"`
	Credential  Credential  `json:"credential"`
	Content     string      `json:"content,omitempty"`
	Description string      `json:"description,omitempty"`
}

// DefaultDescription is stored when an upload carries no description
const DefaultDescription = "Uploaded photo"

// NewUploadRequest builds an upload action
func NewUploadRequest(key, email, token, content, description string) ActionRequest {
	if description == "" {
		description = DefaultDescription
	}
	return ActionRequest{
		Kind:        ActionUpload,
		Key:         ResourceKey{Key: key},
		Claim:       Identity{Email: email},
		Credential:  Credential{Token: token},
		Content:     content,
		Description: description,
	}
}

// NewDeleteRequest builds a delete action
func NewDeleteRequest(key, email, token string) ActionRequest {
	return ActionRequest{
		Kind:       ActionDelete,
		Key:        ResourceKey{Key: key},
		Claim:      Identity{Email: email},
		Credential: Credential{Token: token},
	}
}

// RequiresOwnership reports whether the action mutates an existing resource
func (r ActionRequest) RequiresOwnership() bool {
	return r.Kind == ActionDelete
}
