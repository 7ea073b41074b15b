package pmc

import (
	"strings"
	"time"
)

// Specification decides whether a ride contributes stress to a model.
type Specification interface {
	Pass(Ride) bool
}

// SpecFunc adapts a function to a Specification.
type SpecFunc func(Ride) bool

// Pass calls f(r).
func (f SpecFunc) Pass(r Ride) bool { return f(r) }

// All passes every ride.
var All Specification = SpecFunc(func(Ride) bool { return true })

// DateRange passes rides whose calendar day lies within [From, To].
// A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Pass reports whether the ride falls inside the range.
func (d DateRange) Pass(r Ride) bool {
	day := civilDay(r.Date())
	if !d.From.IsZero() && day.Before(civilDay(d.From)) {
		return false
	}
	if !d.To.IsZero() && day.After(civilDay(d.To)) {
		return false
	}
	return true
}

// Sports passes rides whose sport matches one of the given names,
// case-insensitively. An empty list passes everything.
func Sports(names ...string) Specification {
	if len(names) == 0 {
		return All
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return SpecFunc(func(r Ride) bool {
		_, ok := set[strings.ToLower(r.Sport())]
		return ok
	})
}

// And passes rides accepted by every given specification.
func And(specs ...Specification) Specification {
	return SpecFunc(func(r Ride) bool {
		for _, s := range specs {
			if s != nil && !s.Pass(r) {
				return false
			}
		}
		return true
	})
}
