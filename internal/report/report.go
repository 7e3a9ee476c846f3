// Package report holds the per-cycle summary shared by the orchestrator and
// the cycle recorders.
package report

import "time"

// CustomerFailure is one customer that could not be processed in a cycle.
type CustomerFailure struct {
	GDUN  string `json:"gdun" dynamodbav:"gdun"`
	Error string `json:"error" dynamodbav:"error"`
}

// Cycle summarises one pass over the worklist.
type Cycle struct {
	MungerVersion string
	StartedAt     time.Time
	FinishedAt    time.Time

	// LoadError is set when the worklist could not be loaded; no customer
	// was attempted in that case.
	LoadError string

	Customers int
	Published int
	Failures  []CustomerFailure
	// Exported counts Parquet copies written.
	Exported int
	DryRun   bool
}

// Failed is the number of customers that were attempted and skipped.
func (c Cycle) Failed() int { return len(c.Failures) }

// FailedGDUNs lists the failing customers in worklist order.
func (c Cycle) FailedGDUNs() []string {
	out := make([]string, 0, len(c.Failures))
	for _, f := range c.Failures {
		out = append(out, f.GDUN)
	}
	return out
}

// Complete reports whether every customer was attempted.
func (c Cycle) Complete() bool {
	return c.LoadError == "" && c.Published+c.Failed() == c.Customers
}

// Duration is the wall time of the cycle.
func (c Cycle) Duration() time.Duration {
	return c.FinishedAt.Sub(c.StartedAt)
}
