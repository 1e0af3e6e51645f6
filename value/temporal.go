package value

import (
	"fmt"
	"time"
)

// Date is a calendar date expressed as the number of days since the Unix
// epoch (1970-01-01), matching the engine's literal construction rule
// ("date = epoch+days").
type Date struct {
	Days int32
}

// DateFromTime truncates a time.Time to a Date using its UTC calendar
// day. Midnight UTC is always an exact multiple of 86400 seconds from
// the epoch, so the division is exact on both sides of 1970.
func DateFromTime(t time.Time) Date {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Date{Days: int32(midnight.Unix() / 86400)}
}

// Time reconstructs the midnight-UTC time.Time for this date.
func (d Date) Time() time.Time {
	return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(d.Days))
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// TimeOfDay is a wall-clock time expressed as nanoseconds since midnight
// ("time = ns-of-day").
type TimeOfDay struct {
	Nanos int64
}

const nanosPerDay = int64(24 * time.Hour)

// TimeOfDayFromClock builds a TimeOfDay from hour/minute/second/nanosecond.
func TimeOfDayFromClock(hour, min, sec, nsec int) TimeOfDay {
	n := int64(hour)*int64(time.Hour) + int64(min)*int64(time.Minute) + int64(sec)*int64(time.Second) + int64(nsec)
	return TimeOfDay{Nanos: n}
}

func (t TimeOfDay) String() string {
	n := t.Nanos
	h := n / int64(time.Hour)
	n -= h * int64(time.Hour)
	m := n / int64(time.Minute)
	n -= m * int64(time.Minute)
	s := n / int64(time.Second)
	n -= s * int64(time.Second)
	if n == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, n/1000)
}

// DateTimeVal is a naive (timezone-less) civil timestamp expressed as
// microseconds since the Unix epoch, interpreted in UTC purely as a
// calculation convenience ("datetime = micros epoch").
type DateTimeVal struct {
	Micros int64
}

// DateTimeFromTime builds a DateTimeVal from a time.Time's wall-clock
// fields, ignoring its location (naive semantics).
func DateTimeFromTime(t time.Time) DateTimeVal {
	naive := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return DateTimeVal{Micros: naive.UnixMicro()}
}

// Time reconstructs the naive civil time.Time (UTC-tagged, not a real instant).
func (d DateTimeVal) Time() time.Time {
	return time.UnixMicro(d.Micros).UTC()
}

func (d DateTimeVal) String() string {
	return d.Time().Format("2006-01-02 15:04:05.000000")
}

// TimestampVal is a real instant in time, stored as microseconds since the
// Unix epoch UTC.
type TimestampVal struct {
	Micros int64
}

// TimestampFromTime builds a TimestampVal from any time.Time (converted to UTC).
func TimestampFromTime(t time.Time) TimestampVal {
	return TimestampVal{Micros: t.UTC().UnixMicro()}
}

// Time reconstructs the UTC time.Time instant.
func (t TimestampVal) Time() time.Time {
	return time.UnixMicro(t.Micros).UTC()
}

func (t TimestampVal) String() string {
	return t.Time().Format("2006-01-02 15:04:05.000000 UTC")
}
