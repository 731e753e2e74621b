package notification

import (
	"sync"

	"code.cloudfoundry.org/lager"
	"code.cloudfoundry.org/workpool"

	"github.com/fantamercato/market/markettypes"
)

// LoggerSink logs every event. It is the default sink for the node when no
// chat/alert consumer is attached.
type LoggerSink struct {
	logger lager.Logger
}

func NewLoggerSink(logger lager.Logger) *LoggerSink {
	return &LoggerSink{logger: logger.Session("notifications")}
}

func (s *LoggerSink) Notify(event markettypes.Event) {
	s.logger.Info("event", lager.Data{
		"type":       event.Type,
		"league-id":  event.LeagueID,
		"session-id": event.SessionID,
		"data":       event.Data,
	})
}

// FanOut delivers each event to every attached sink on a shared work pool so
// a slow consumer never blocks the engine's single-writer path.
type FanOut struct {
	sinks []markettypes.NotificationSink
	pool  *workpool.WorkPool
}

func NewFanOut(workers int, sinks ...markettypes.NotificationSink) (*FanOut, error) {
	pool, err := workpool.NewWorkPool(workers)
	if err != nil {
		return nil, err
	}
	return &FanOut{sinks: sinks, pool: pool}, nil
}

func (f *FanOut) Notify(event markettypes.Event) {
	for _, sink := range f.sinks {
		sink := sink
		f.pool.Submit(func() {
			sink.Notify(event)
		})
	}
}

func (f *FanOut) Stop() {
	f.pool.Stop()
}

// Recorder captures events for assertions in tests.
type Recorder struct {
	lock   sync.Mutex
	events []markettypes.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(event markettypes.Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []markettypes.Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]markettypes.Event, len(r.events))
	copy(out, r.events)
	return out
}

// EventsOfType filters recorded events by type.
func (r *Recorder) EventsOfType(eventType markettypes.EventType) []markettypes.Event {
	out := []markettypes.Event{}
	for _, event := range r.Events() {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
