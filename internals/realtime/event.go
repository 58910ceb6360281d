package realtime

import "kindergarten_backend/internals/constants"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is pushed to subscribers after a successful write.
// Audience and Public only steer delivery to parents; they never go on the wire.
type Event struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     string `json:"id"`

	Audience []string `json:"-"` // user id parent yang berhak
	Public   bool     `json:"-"` // boleh dilihat semua role
}

type Publisher interface {
	Publish(ev Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ev Event)

func (f PublisherFunc) Publish(ev Event) { f(ev) }

// Multi fans one event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(ev Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ev)
		}
	}
}

// Nop drops events.
type Nop struct{}

func (Nop) Publish(Event) {}

func IsTopic(t string) bool {
	for _, x := range constants.AllTopics {
		if x == t {
			return true
		}
	}
	return false
}
