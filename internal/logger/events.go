package logger

import (
	"github.com/dendrascience/dirlist/listing"
)

// EventLogger writes listing events through a ConsoleLogger.
//
// Task starts are trace, state changes debug, pool shutdowns debug and task
// errors warn, so the default info level only surfaces unreadable directories.
type EventLogger struct {
	log *ConsoleLogger
}

// NewEventLogger returns a listing.Recorder backed by log.
func NewEventLogger(log *ConsoleLogger) *EventLogger {
	return &EventLogger{log: log}
}

// Record implements listing.Recorder.
func (e *EventLogger) Record(ev listing.Event) {
	run := shortRun(ev.Run)
	switch ev.Kind {
	case listing.EventTaskStart:
		e.log.Tracef("%s worker %d listing %s", run, ev.Worker, ev.Path)
	case listing.EventTaskError:
		e.log.Warnf("%s worker %d: %v", run, ev.Worker, ev.Err)
	case listing.EventPoolShutdown:
		e.log.Debugf("%s pool shut down", run)
	case listing.EventStateChange:
		e.log.Debugf("%s %s %s", run, ev.State, ev.Path)
	}
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
