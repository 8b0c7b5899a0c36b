package domain

import (
	"time"

	"github.com/DRSN-tech/price-backend/pkg/e"
)

// DateLayout — формат дат в API и в кэше.
const DateLayout = time.DateOnly

// ParseDate разбирает дату формата YYYY-MM-DD в полночь UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, e.ErrInvalidDate
	}

	return t, nil
}

// Date отбрасывает время суток, оставляя календарную дату в UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate форматирует необязательную дату; nil остаётся nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(DateLayout)
	return &s
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(*b)
}
