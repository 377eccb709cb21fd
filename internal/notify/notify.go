// Package notify delivers alert/reschedule notifications to instructors
// and students through a pluggable Sink.
package notify

import "context"

// Notification is one message to deliver to one or more device tokens.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sink delivers notifications to a batch of recipient tokens.
type Sink interface {
	Send(ctx context.Context, tokens []string, n Notification) error
}
