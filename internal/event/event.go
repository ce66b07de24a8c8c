package event

import "time"

// Activity is the cross-tab broadcast message: the wall-clock time of the
// last observed user interaction, plus the publishing tab's id so a tab can
// skip its own messages.
type Activity struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

type Bus interface {
	Publish(a Activity)
	Subscribe() (<-chan Activity, func())
}
