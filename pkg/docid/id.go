package docid

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is a stable, globally unique document identifier.
// It groups every stored version (per locale, per publication status) of
// the same logical document.
//
// IDs are stored in the document_id column of every content-type table.
type ID struct {
	value uuid.UUID
}

// New generates a new random ID (UUID v4).
func New() ID {
	return ID{value: uuid.New()}
}

// MustParse parses an ID from string, panicking on error.
// This is useful for test fixtures where the ID is known valid.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("invalid document ID: %s: %v", s, err))
	}
	return id
}

// Parse parses an ID from its canonical string form
// (e.g. "550e8400-e29b-41d4-a716-446655440000").
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("document ID cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid document ID format: %w", err)
	}
	return ID{value: u}, nil
}

// String returns the canonical ID string in lowercase with hyphens.
func (id ID) String() string {
	return id.value.String()
}

// IsZero returns true if this is the zero ID.
func (id ID) IsZero() bool {
	return id.value == uuid.Nil
}

// Equal returns true if two IDs name the same document.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("document ID must be a string: %w", err)
	}
	if s == "" || s == "null" {
		*id = ID{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements sql.Scanner for database reads.
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = ID{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			*id = ID{}
			return nil
		}
		parsed, err := Parse(v)
		if err != nil {
			return fmt.Errorf("cannot scan string into document ID: %w", err)
		}
		*id = parsed
		return nil
	case []byte:
		if len(v) == 0 {
			*id = ID{}
			return nil
		}
		parsed, err := Parse(string(v))
		if err != nil {
			return fmt.Errorf("cannot scan bytes into document ID: %w", err)
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into document ID", value)
	}
}

// Value implements driver.Valuer for database writes.
// Returns nil for the zero ID so absent identities store as NULL.
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return id.String(), nil
}
