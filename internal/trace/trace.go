// Package trace parses and replays a JSON trace of scheduler events. It is
// the peripheral harness spec.md places out of scope for the core itself,
// a thin collaborator that turns a recorded event list into calls against a
// schedsim.Scheduler, for the CLI and server commands to share.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/go-foundations/schedsim"
	"github.com/go-foundations/schedsim/policy"
)

// EventKind names the three event types the simulator core reacts to.
type EventKind string

const (
	Arrival          EventKind = "arrival"
	Completion       EventKind = "completion"
	QuantumExpiredEv EventKind = "quantum_expired"
)

// Event is one line of a recorded trace.
type Event struct {
	Kind EventKind `json:"kind"`
	Time int       `json:"time"`

	// Arrival fields.
	JobID       int `json:"job_id,omitempty"`
	RunningTime int `json:"running_time,omitempty"`
	Priority    int `json:"priority,omitempty"`

	// Completion / quantum-expired fields.
	CoreID int `json:"core_id,omitempty"`
}

// File is the top-level shape of a trace file.
type File struct {
	Cores      int           `json:"cores"`
	SchemeName string        `json:"scheme"`
	Events     []Event       `json:"events"`
	Scheme     policy.Scheme `json:"-"`
}

// ParseFile decodes a trace file from r and resolves its scheme name.
func ParseFile(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("trace: decode: %w", err)
	}
	scheme, err := parseScheme(f.SchemeName)
	if err != nil {
		return nil, err
	}
	f.Scheme = scheme

	sort.SliceStable(f.Events, func(i, j int) bool { return f.Events[i].Time < f.Events[j].Time })
	return &f, nil
}

func parseScheme(name string) (policy.Scheme, error) {
	switch name {
	case "FCFS":
		return policy.FCFS, nil
	case "SJF":
		return policy.SJF, nil
	case "PSJF":
		return policy.PSJF, nil
	case "PRI":
		return policy.PRI, nil
	case "PPRI":
		return policy.PPRI, nil
	case "RR":
		return policy.RR, nil
	default:
		return 0, fmt.Errorf("trace: unknown scheme %q", name)
	}
}

// Decision records what the scheduler did in response to one event, for the
// harness to log or stream.
type Decision struct {
	Event  Event `json:"event"`
	Result int   `json:"result"`
}

// Run drives sched through every event in f.Events, in order, invoking
// onDecision (if non-nil) after each one.
func Run(sched *schedsim.Scheduler, f *File, onDecision func(Decision)) error {
	for _, ev := range f.Events {
		var result int
		switch ev.Kind {
		case Arrival:
			result = sched.NewJob(ev.JobID, ev.Time, ev.RunningTime, ev.Priority)
		case Completion:
			result = sched.JobFinished(ev.CoreID, ev.JobID, ev.Time)
		case QuantumExpiredEv:
			result = sched.QuantumExpired(ev.CoreID, ev.Time)
		default:
			return fmt.Errorf("trace: unknown event kind %q", ev.Kind)
		}
		if onDecision != nil {
			onDecision(Decision{Event: ev, Result: result})
		}
	}
	return nil
}
