package schema

import "encoding/json"

// NullableString is a JSON string field that distinguishes an absent key
// from an explicit null.
type NullableString struct {
	Value string
	Valid bool
	Set   bool
}

// String returns a present, non-null value.
func String(v string) NullableString {
	return NullableString{Value: v, Valid: true, Set: true}
}

// Null returns a present, explicit null.
func Null() NullableString {
	return NullableString{Set: true}
}

// Ptr returns nil for null or absent values.
func (n NullableString) Ptr() *string {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n NullableString) IsZero() bool {
	return !n.Set
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value, n.Valid = "", false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
