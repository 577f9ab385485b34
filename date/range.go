package date

import (
	"fmt"
	"iter"
)

// Range represents a closed interval of calendar days.
type Range struct{ From, To Date }

// NewRange returns the range [from, to]. It panics if to is before from,
// which is always a programming error.
func NewRange(from, to Date) Range {
	if to.Before(from) {
		panic(fmt.Sprintf("invalid range: %s is before %s", to, from))
	}
	return Range{From: from, To: to}
}

// Contains reports whether day is included in the range, boundaries included.
func (r Range) Contains(day Date) bool { return !day.Before(r.From) && !day.After(r.To) }

// Len returns the number of days in the range.
func (r Range) Len() int { return r.To.Sub(r.From) + 1 }

// Days returns an iterator over every calendar day in the range, in
// ascending order. Weekends and holidays are ordinary days here; it is
// the caller's business to decide what carries forward.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for day := r.From; !day.After(r.To); day = day.Add(1) {
			if !yield(day) {
				return
			}
		}
	}
}

// String formats the range in its canonical "from..to" form.
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
