package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// NullableUUID is a request field that distinguishes an absent JSON key
// from an explicit null. The zero value means the key was not sent.
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		*n = NullableUUID{Set: true}
		return nil
	}

	var parsed uuid.UUID
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	*n = NullableUUID{Set: true, Value: &parsed}
	return nil
}

// Null reports whether the field carried an explicit JSON null.
func (n NullableUUID) Null() bool {
	return n.Set && n.Value == nil
}

// Ptr returns a copy of the value, or nil when the field was null or absent.
func (n NullableUUID) Ptr() *uuid.UUID {
	if n.Value == nil {
		return nil
	}
	v := *n.Value
	return &v
}
