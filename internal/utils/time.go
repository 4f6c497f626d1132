package util

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateTime is a UTC timestamp with seconds precision, written as
// "2006-01-02 15:04:05" on the wire.
type DateTime struct {
	time.Time
}

const Layout = "2006-01-02 15:04:05"

var acceptedLayouts = []string{
	Layout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Second)}
}

func (dt DateTime) String() string {
	if dt.IsZero() {
		return ""
	}
	return dt.UTC().Format(Layout)
}

func (dt *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := parse(s)
	if err != nil {
		return err
	}
	dt.Time = t
	return nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + dt.String() + `"`), nil
}

func (dt DateTime) Equal(other DateTime) bool {
	return dt.Time.Equal(other.Time)
}

func (dt DateTime) Value() (driver.Value, error) {
	if dt.IsZero() {
		return nil, nil
	}
	return dt.UTC(), nil
}

func (dt *DateTime) Scan(value interface{}) error {
	if value == nil {
		dt.Time = time.Time{}
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		dt.Time = v.UTC()
		return nil
	case []byte:
		parsed, err := parse(string(v))
		if err != nil {
			return err
		}
		dt.Time = parsed
		return nil
	case string:
		parsed, err := parse(v)
		if err != nil {
			return err
		}
		dt.Time = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into DateTime", value)
	}
}

func parse(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range acceptedLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
