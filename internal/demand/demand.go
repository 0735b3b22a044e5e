// Package demand defines the contract between the gap analyzer and the
// external popularity-signal providers. Providers degrade, they do not
// fail: a transport or provider error comes back as a zero count with
// the error text attached, never as a Go error the analyzer must
// handle, so one dead provider can only lower a score.
package demand

import (
	"context"
	"time"
)

// Result is one provider's answer for a (skill, track) pair. Count is
// always >= 0; Err is set when the count is degraded rather than real.
type Result struct {
	Count     int       `json:"count"`
	Err       string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TrendPoint is one month of a skill's demand series.
type TrendPoint struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
	Err   string `json:"error,omitempty"`
}

// Source is a demand data provider. Implementations sit behind the
// evidence cache and enforce their own transport timeouts; Demand must
// never block indefinitely and never panics across this boundary.
type Source interface {
	Name() string
	Demand(ctx context.Context, skill, track, credential string) Result
	MonthlySeries(ctx context.Context, skill, track, credential string, months int) []TrendPoint
}

// Degraded builds the zero-evidence Result used whenever a provider
// cannot answer.
func Degraded(err error) Result {
	return Result{Count: 0, Err: err.Error(), FetchedAt: time.Now()}
}
