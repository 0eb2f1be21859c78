package video

import "time"

// StatusChangedEvent is raised on every status transition
type StatusChangedEvent struct {
	VideoID   string
	From      Status
	To        Status
	Error     string
	ChangedAt time.Time
}

func (e StatusChangedEvent) EventName() string {
	return "video.status.changed"
}

func (e StatusChangedEvent) OccurredAt() time.Time {
	return e.ChangedAt
}
