package todo

import (
	"strings"

	"github.com/google/uuid"
)

// tempPrefix marks locally generated identifiers that have not yet been
// confirmed by the storage backend.
const tempPrefix = "temp-"

// NewID returns a new unique identifier for a list or item.
func NewID() string {
	return uuid.NewString()
}

// NewTempID returns a temporary identifier for an optimistically created
// list. The same value doubles as the correlation token used to retire
// the pending entry once the backend confirms the create.
func NewTempID() string {
	return tempPrefix + uuid.NewString()
}

// IsTempID reports whether id is a temporary identifier.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}
