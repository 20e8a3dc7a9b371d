package admin

import "fmt"

// Status is the result class of one step of a bulk operation.
type Status int

const (
	Applied Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome describes what happened to one target (a column, an index or a
// table) during an operation. Skipped outcomes carry a Reason, failed ones an Err.
type Outcome struct {
	Target    string
	Statement string
	Status    Status
	Reason    string
	Err       error
}

// OK reports whether the step did not fail.
func (o Outcome) OK() bool {
	return o.Status != Failed
}

func (o Outcome) String() string {
	switch o.Status {
	case Skipped:
		return fmt.Sprintf("%s: skipped: %s", o.Target, o.Reason)
	case Failed:
		return fmt.Sprintf("%s: failed: %v", o.Target, o.Err)
	default:
		return fmt.Sprintf("%s: applied", o.Target)
	}
}

// Summary counts outcomes by status.
type Summary struct {
	Applied int
	Skipped int
	Failed  int
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	var s Summary

	for _, o := range outcomes {
		switch o.Status {
		case Applied:
			s.Applied++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		}
	}

	return s
}

func (t *Tools) applied(target, statement string) Outcome {
	return Outcome{Target: target, Statement: statement, Status: Applied}
}

func (t *Tools) skipped(target, reason string) Outcome {
	t.logf("%s: skipped: %s", target, reason)
	return Outcome{Target: target, Status: Skipped, Reason: reason}
}

func (t *Tools) failed(target, statement string, err error) Outcome {
	t.logf("%s: failed to execute %q: %v", target, statement, err)
	return Outcome{Target: target, Statement: statement, Status: Failed, Err: err}
}
