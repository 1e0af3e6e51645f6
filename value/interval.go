package value

import "fmt"

// IntervalValue is the (months, days, nanos) triple BigQuery uses for
// INTERVAL, kept as three independent components rather than normalized so
// that "1 month" and "30 days" stay distinguishable.
type IntervalValue struct {
	Months int32
	Days   int32
	Nanos  int64
}

const (
	MicrosPerSecond = int64(1_000_000)
	MicrosPerMinute = 60 * MicrosPerSecond
	MicrosPerHour   = 60 * MicrosPerMinute
	NanosPerMicro   = int64(1_000)
)

// NewInterval builds an IntervalValue from months/days/micros.
func NewInterval(months, days int32, micros int64) IntervalValue {
	return IntervalValue{Months: months, Days: days, Nanos: micros * NanosPerMicro}
}

// IntervalFromMonths builds a months-only interval.
func IntervalFromMonths(months int32) IntervalValue {
	return IntervalValue{Months: months}
}

// IntervalFromDays builds a days-only interval.
func IntervalFromDays(days int32) IntervalValue {
	return IntervalValue{Days: days}
}

// IntervalFromHours builds an hours-only interval expressed in nanoseconds.
func IntervalFromHours(hours int64) IntervalValue {
	return IntervalValue{Nanos: hours * MicrosPerHour * NanosPerMicro}
}

func (iv IntervalValue) String() string {
	return fmt.Sprintf("%d-%d %d", iv.Months, iv.Days, iv.Nanos)
}

// DebugString renders the verbose SQL-literal-like form used by Value.Debug.
func (iv IntervalValue) DebugString() string {
	return fmt.Sprintf("%d months %d days %d nanos", iv.Months, iv.Days, iv.Nanos)
}
