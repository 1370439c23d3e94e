// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const viewerPrefix = "viewer-"

var ErrIdentityEmpty = errors.New("identity empty")

// Identity is the client-chosen key of a viewer in the session.
// Nothing guarantees it is secret or unique across browsers.
type Identity string

// ParseIdentity accepts any non-empty string. Frame size is bounded by
// the transport read limit.
func ParseIdentity(raw string) (Identity, error) {
	if raw == "" {
		return "", ErrIdentityEmpty
	}
	return Identity(raw), nil
}

// NewIdentity is a tiny helper for clients that do not bring their own id.
func NewIdentity() Identity {
	return Identity(viewerPrefix + uuid.NewString())
}
