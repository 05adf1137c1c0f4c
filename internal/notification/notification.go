// Package notification classifies inbound SES bounce/complaint webhook
// payloads and routes them to injected signal sinks.
package notification

import (
	"context"
	"errors"
)

// UnknownField is the sentinel used when an optional identifying field is
// absent from a notification payload.
const UnknownField = "unknown"

// Classification errors. Both are recovered at the HTTP boundary into a 400
// response; neither causes an event emission.
var (
	ErrMalformedPayload             = errors.New("notification: malformed payload")
	ErrUnrecognizedNotificationType = errors.New("notification: unrecognized notification type")
)

// Event is a classified SES notification. Exactly one of BounceEvent or
// ComplaintEvent.
type Event interface {
	isEvent()
}

// BounceEvent carries the mail and bounce sub-objects of a bounce
// notification plus the identifying fields extracted for logging and
// persistence. Sub-objects missing from the payload are empty maps, never
// nil.
type BounceEvent struct {
	Mail          map[string]interface{}
	Bounce        map[string]interface{}
	FeedbackID    string
	BounceType    string
	BounceSubType string
}

func (BounceEvent) isEvent() {}

// ComplaintEvent is the complaint counterpart of BounceEvent.
type ComplaintEvent struct {
	Mail         map[string]interface{}
	Complaint    map[string]interface{}
	FeedbackID   string
	FeedbackType string
}

func (ComplaintEvent) isEvent() {}

// BounceSink consumes classified bounce events.
type BounceSink interface {
	BounceReceived(ctx context.Context, ev BounceEvent) error
}

// ComplaintSink consumes classified complaint events.
type ComplaintSink interface {
	ComplaintReceived(ctx context.Context, ev ComplaintEvent) error
}

// BounceFanout notifies every sink in order and joins their errors, so one
// failing listener does not starve the rest.
type BounceFanout []BounceSink

func (f BounceFanout) BounceReceived(ctx context.Context, ev BounceEvent) error {
	var errs []error
	for _, sink := range f {
		if err := sink.BounceReceived(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ComplaintFanout is the complaint counterpart of BounceFanout.
type ComplaintFanout []ComplaintSink

func (f ComplaintFanout) ComplaintReceived(ctx context.Context, ev ComplaintEvent) error {
	var errs []error
	for _, sink := range f {
		if err := sink.ComplaintReceived(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
