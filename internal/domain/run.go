package domain

import "time"

type Outcome string

const (
	OutcomeSucceeded     Outcome = "succeeded"
	OutcomeConfigError   Outcome = "config_error"
	OutcomeConnectFailed Outcome = "connect_failed"
	OutcomeQueryFailed   Outcome = "query_failed"
)

func (o Outcome) OK() bool { return o == OutcomeSucceeded }

// Status es lo que devuelve el handler a Lambda.
func (o Outcome) Status() string {
	switch o {
	case OutcomeSucceeded:
		return "ok"
	case OutcomeConfigError:
		return "config error"
	case OutcomeConnectFailed:
		return "connect failed"
	case OutcomeQueryFailed:
		return "cleanup failed"
	default:
		return string(o)
	}
}

// Run es el registro de una invocación del janitor.
type Run struct {
	ID            string
	Trigger       string // id del evento de EventBridge, o "local"
	Source        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Keyspace      string
	Table         string
	Threshold     *time.Time // nil si nunca se llegó a calcular
	ContactPoints []string
	Outcome       Outcome
	Error         string
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
