package listing

import "fmt"

// EventKind identifies what a recorded event reports.
type EventKind int

const (
	EventTaskStart EventKind = iota
	EventTaskError
	EventPoolShutdown
	EventStateChange
)

func (k EventKind) String() string {
	switch k {
	case EventTaskStart:
		return "task-start"
	case EventTaskError:
		return "task-error"
	case EventPoolShutdown:
		return "pool-shutdown"
	case EventStateChange:
		return "state-change"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a fire-and-forget notification about listing progress.
type Event struct {
	Kind   EventKind
	Run    string // listing run ID
	Worker int    // 1-based worker number, 0 for the coordinator
	Path   string
	State  State
	Err    error
}

// Recorder receives listing events. Record is called from worker goroutines
// and must be safe for concurrent use; it must not block for long.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Event)

// Record calls f(e).
func (f RecorderFunc) Record(e Event) { f(e) }

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

// MultiRecorder fans each event out to every non-nil recorder.
func MultiRecorder(recs ...Recorder) Recorder {
	var out multiRecorder
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return nopRecorder{}
	case 1:
		return out[0]
	}
	return out
}

type multiRecorder []Recorder

func (m multiRecorder) Record(e Event) {
	for _, r := range m {
		r.Record(e)
	}
}
