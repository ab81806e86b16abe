package core

import (
	"fmt"
	"time"

	"github.com/hallwey/office/internal/domain"
)

// Notifier derives office activity announcements from registry transitions.
// It has no state of its own; the clock is injectable for tests.
type Notifier struct {
	now func() time.Time
}

func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

func (n *Notifier) Joined(name string) domain.ActivityEvent {
	return domain.ActivityEvent{
		Type:      domain.ActivityJoin,
		UserName:  name,
		Timestamp: n.now(),
		Message:   fmt.Sprintf("%s entered the office", name),
	}
}

func (n *Notifier) Left(name string) domain.ActivityEvent {
	return domain.ActivityEvent{
		Type:      domain.ActivityLeave,
		UserName:  name,
		Timestamp: n.now(),
		Message:   fmt.Sprintf("%s left the office", name),
	}
}
