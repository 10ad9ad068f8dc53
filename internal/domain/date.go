package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date: календарная дата без времени. Нулевое значение сериализуется в null.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate понимает YYYY-MM-DD, YYYY-MM, YYYY и RFC3339.
// Всё остальное ("Present", "", мусор от модели): нулевая дата.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01", "2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day())
		}
	}
	return Date{}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON не возвращает ошибок формата: неразборчивая дата превращается в null.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}
