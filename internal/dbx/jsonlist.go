package dbx

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList maps a JSONB array of strings to a Go slice. A NULL column
// scans as an empty list.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("dbx: cannot scan %T into StringList", src)
	}

	out := []string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("dbx: %w", err)
	}
	*l = out
	return nil
}

// Value implements driver.Valuer. A nil list is stored as "[]".
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
