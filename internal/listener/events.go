package listener

import (
	"github.com/cockroachdb/errors"
)

// Lifecycle event names emitted by the host runner.
const (
	EventBeforeSuite   = "beforeSuite"
	EventAfterSuite    = "afterSuite"
	EventBeforeExample = "beforeExample"
	EventAfterExample  = "afterExample"
)

// Priority of every subscription. Negative values run after most other listeners.
const Priority = -10

// ErrUnknownEvent is returned by Dispatch for an event the listener does not handle.
var ErrUnknownEvent = errors.New("unknown lifecycle event")

// Subscription names the listener method handling an event.
type Subscription struct {
	Method   string
	Priority int
}

// SubscribedEvents returns the events the listener subscribes to.
func (l *Listener) SubscribedEvents() map[string]Subscription {
	return map[string]Subscription{
		EventBeforeSuite:   {Method: "BeforeSuite", Priority: Priority},
		EventAfterSuite:    {Method: "AfterSuite", Priority: Priority},
		EventBeforeExample: {Method: "BeforeExample", Priority: Priority},
		EventAfterExample:  {Method: "AfterExample", Priority: Priority},
	}
}

// Dispatch invokes the handler of event. Example events require ex.
func (l *Listener) Dispatch(event string, ex *Example) error {
	switch event {
	case EventBeforeSuite:
		return l.BeforeSuite()
	case EventAfterSuite:
		return l.AfterSuite()
	case EventBeforeExample, EventAfterExample:
		if ex == nil {
			return errors.Newf("%s requires an example", event)
		}
		if event == EventBeforeExample {
			return l.BeforeExample(*ex)
		}
		return l.AfterExample(*ex)
	default:
		return errors.Wrapf(ErrUnknownEvent, "%q", event)
	}
}
