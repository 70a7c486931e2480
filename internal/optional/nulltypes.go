package optional

import (
	"database/sql"
	"time"

	"golang.org/x/exp/constraints"
)

// FromNullFloat64 converts a sql.NullFloat64 into an Optional.
func FromNullFloat64(v sql.NullFloat64) Optional[float64] {
	if !v.Valid {
		return Optional[float64]{}
	}
	return New(v.Float64)
}

// ToNullFloat64 converts an Optional into a sql.NullFloat64.
func ToNullFloat64[T constraints.Float](o Optional[T]) sql.NullFloat64 {
	if o.IsEmpty() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(o.value), Valid: true}
}

// FromNullTime converts a sql.NullTime into an Optional.
func FromNullTime(v sql.NullTime) Optional[time.Time] {
	if !v.Valid {
		return Optional[time.Time]{}
	}
	return New(v.Time)
}

// ToNullTime converts an Optional into a sql.NullTime.
func ToNullTime(o Optional[time.Time]) sql.NullTime {
	if o.IsEmpty() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: o.value, Valid: true}
}
