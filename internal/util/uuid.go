package util

import "github.com/google/uuid"

// GenerateUUID returns a random (version 4) UUID. It panics only if the
// system random source fails.
func GenerateUUID() string {
	return uuid.NewString()
}
