package process

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

const (
	durationLong   = 9 * time.Second
	durationShort  = 3 * time.Second
	durationMedium = 5 * time.Second
)

// Notification is an advisory status message for the user.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
	Duration    time.Duration
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
