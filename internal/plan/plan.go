// Package plan holds the storage tier policy table. Every size, count and
// retention limit used by the upload path and the stats endpoint comes from here
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownPlan = errors.New("unknown plan type")

type Type string

const (
	Basic   Type = "basic"
	Short   Type = "5day"
	Monthly Type = "monthly"
	Yearly  Type = "yearly"
)

const (
	MB = 1 << 20

	Day = 24 * time.Hour

	// Alternative free tier retention some deployments run with
	BasicRetention30d = 30 * Day
)

// Limits describes what a plan allows. MaxFiles is counted per calendar month
// for the basic plan and over the whole plan period for paid plans
type Limits struct {
	Type      Type          `json:"planType"`
	Name      string        `json:"name"`
	MaxSize   int64         `json:"maxSize"`
	MaxFiles  int           `json:"maxFiles"`
	Retention time.Duration `json:"-"`
}

// MarshalJSON adds the retention window in whole hours so clients can show
// when an upload will expire
func (l Limits) MarshalJSON() ([]byte, error) {
	type limits Limits

	return json.Marshal(struct {
		limits
		RetentionHours int64 `json:"retentionHours"`
	}{limits(l), int64(l.Retention / time.Hour)})
}

type Table map[Type]Limits

// Default returns the policy table with the 24 hour free tier retention
func Default() Table {
	return Table{
		Basic: {
			Type:      Basic,
			Name:      "Free Plan",
			MaxSize:   50 * MB,
			MaxFiles:  3,
			Retention: Day,
		},
		Short: {
			Type:      Short,
			Name:      "5 Day Plan",
			MaxSize:   50 * MB,
			MaxFiles:  2,
			Retention: 5 * Day,
		},
		Monthly: {
			Type:      Monthly,
			Name:      "Monthly Plan",
			MaxSize:   100 * MB,
			MaxFiles:  10,
			Retention: 30 * Day,
		},
		Yearly: {
			Type:      Yearly,
			Name:      "Yearly Plan",
			MaxSize:   100 * MB,
			MaxFiles:  100,
			Retention: 365 * Day,
		},
	}
}

// WithBasicRetention returns a copy of t where the basic plan keeps files for d
func (t Table) WithBasicRetention(d time.Duration) Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}

	b := out[Basic]
	b.Retention = d
	out[Basic] = b

	return out
}

// Lookup returns the limits of p. Unknown or empty plan types fall back
// to the basic plan
func (t Table) Lookup(p Type) Limits {
	if l, ok := t[p]; ok {
		return l
	}

	return t[Basic]
}

// Ordered returns the plans from cheapest to most expensive
func (t Table) Ordered() []Limits {
	out := make([]Limits, 0, len(t))
	for _, p := range []Type{Basic, Short, Monthly, Yearly} {
		if l, ok := t[p]; ok {
			out = append(out, l)
		}
	}

	return out
}

// LargestFile returns the biggest upload any plan in t allows
func (t Table) LargestFile() int64 {
	var n int64
	for _, l := range t {
		n = max(n, l.MaxSize)
	}

	return n
}

// Parse validates a plan type coming from a client. Only paid plans can be
// bought so basic is rejected
func Parse(s string) (Type, error) {
	switch p := Type(s); p {
	case Short, Monthly, Yearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownPlan, s)
	}
}

// IsPaid reports whether p is a paid tier
func (p Type) IsPaid() bool {
	return p == Short || p == Monthly || p == Yearly
}

// PeriodEnd returns when a subscription to p bought at from runs out.
// Months and years follow the calendar
func (p Type) PeriodEnd(from time.Time) time.Time {
	switch p {
	case Short:
		return from.AddDate(0, 0, 5)
	case Monthly:
		return from.AddDate(0, 1, 0)
	case Yearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 0, 30)
	}
}

// MonthStart returns the first instant of the calendar month t falls in (UTC)
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
