package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	PredictionID ID
	UploadID     ID
	EntityID     string
)

// String conversions for domain IDs
func (id PredictionID) String() string { return ID(id).String() }
func (id UploadID) String() string     { return ID(id).String() }
func (id EntityID) String() string     { return string(id) }

// NewPredictionID creates a globally unique prediction identifier carrying the
// domain's short prefix (e.g. "SP" for vessel alerts), matching the id scheme
// downstream dashboards already key on.
func NewPredictionID(prefix string) PredictionID {
	return PredictionID(fmt.Sprintf("%s_%s", prefix, NewID()))
}

// ParseUploadID parses a string into UploadID
func ParseUploadID(s string) (UploadID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("upload ID cannot be empty")
	}
	return UploadID(s), nil
}

// ParseEntityID parses a string into EntityID
func ParseEntityID(s string) (EntityID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("entity ID cannot be empty")
	}
	return EntityID(s), nil
}
