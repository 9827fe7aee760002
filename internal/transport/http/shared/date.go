package shared

import "time"

const dateLayout = "2006-01-02"

// ParseDate reads the date fields on goal, hire and training payloads.
// They normally arrive as plain YYYY-MM-DD; full RFC3339 timestamps are
// accepted for clients that send them.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}
