package model

import "time"

// Instants are stored as Unix milliseconds so they compare numerically in
// SQL, including negative values and the epoch itself.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// ceilMillis rounds up, where toMillis rounds down.
func ceilMillis(value time.Time) int64 {
	ms := toMillis(value)
	if value.Nanosecond()%int(time.Millisecond) != 0 {
		ms++
	}
	return ms
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) *int64 {
	if value == nil {
		return nil
	}
	ms := toMillis(*value)
	return &ms
}

func fromNullMillis(value *int64) *time.Time {
	if value == nil {
		return nil
	}
	t := fromMillis(*value)
	return &t
}
