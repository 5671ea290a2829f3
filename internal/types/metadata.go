package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Metadata represents a JSONB field for storing key-value pairs
type Metadata map[string]string

// Scan implements the sql.Scanner interface for Metadata
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(Metadata)
	err := json.Unmarshal(bytes, &result)
	*m = result
	return err
}

// Value implements the driver.Valuer interface for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(Metadata))
	}
	return json.Marshal(m)
}

// CSVList is a list of names stored as a single comma separated column
type CSVList []string

// ParseCSVList splits a comma separated string, trimming blanks and dropping empty entries
func ParseCSVList(raw string) CSVList {
	parts := strings.Split(raw, ",")
	out := make(CSVList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return lo.Uniq(out)
}

func (l CSVList) String() string {
	return strings.Join(l, ",")
}

// Contains reports whether name is in the list, ignoring case
func (l CSVList) Contains(name string) bool {
	name = strings.TrimSpace(name)
	return lo.ContainsBy(l, func(item string) bool {
		return strings.EqualFold(item, name)
	})
}

// Scan implements the sql.Scanner interface for CSVList
func (l *CSVList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = CSVList{}
	case []byte:
		*l = ParseCSVList(string(v))
	case string:
		*l = ParseCSVList(v)
	default:
		return fmt.Errorf("failed to scan csv list: %v", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for CSVList
func (l CSVList) Value() (driver.Value, error) {
	return l.String(), nil
}
