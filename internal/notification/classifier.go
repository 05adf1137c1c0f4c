package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ignite/ses-stats/internal/pkg/logger"
)

// Classifier parses raw webhook bodies, classifies them and emits exactly one
// event per successfully classified payload. It holds no state between calls;
// duplicate and out-of-order deliveries each produce their own event.
type Classifier struct {
	bounces    BounceSink
	complaints ComplaintSink
}

// NewClassifier creates a Classifier dispatching to the given sinks. Compose
// multiple listeners with BounceFanout/ComplaintFanout before passing them in.
func NewClassifier(bounces BounceSink, complaints ComplaintSink) *Classifier {
	return &Classifier{bounces: bounces, complaints: complaints}
}

// Classify decodes rawBody, dispatches on notificationType and emits the
// resulting event. On success the event is returned after its sink accepted
// it. Classification failures return ErrMalformedPayload or
// ErrUnrecognizedNotificationType (wrapped) and emit nothing.
func (c *Classifier) Classify(ctx context.Context, rawBody []byte) (Event, error) {
	var payload struct {
		NotificationType string                 `json:"notificationType"`
		Mail             map[string]interface{} `json:"mail"`
		Bounce           map[string]interface{} `json:"bounce"`
		Complaint        map[string]interface{} `json:"complaint"`
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		logger.Warn("received notification with bad JSON",
			"error", err.Error(),
			"payload", string(rawBody),
		)
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch payload.NotificationType {
	case "Bounce":
		ev := BounceEvent{
			Mail:          orEmpty(payload.Mail),
			Bounce:        orEmpty(payload.Bounce),
			FeedbackID:    stringField(payload.Bounce, "feedbackId"),
			BounceType:    stringField(payload.Bounce, "bounceType"),
			BounceSubType: stringField(payload.Bounce, "bounceSubType"),
		}
		logger.Info("received bounce notification",
			"feedback_id", ev.FeedbackID,
			"bounce_type", ev.BounceType,
			"bounce_sub_type", ev.BounceSubType,
			"payload", string(rawBody),
		)
		if err := c.bounces.BounceReceived(ctx, ev); err != nil {
			return nil, fmt.Errorf("dispatching bounce event: %w", err)
		}
		return ev, nil

	case "Complaint":
		ev := ComplaintEvent{
			Mail:         orEmpty(payload.Mail),
			Complaint:    orEmpty(payload.Complaint),
			FeedbackID:   stringField(payload.Complaint, "feedbackId"),
			FeedbackType: stringField(payload.Complaint, "complaintFeedbackType"),
		}
		logger.Info("received complaint notification",
			"feedback_id", ev.FeedbackID,
			"feedback_type", ev.FeedbackType,
			"payload", string(rawBody),
		)
		if err := c.complaints.ComplaintReceived(ctx, ev); err != nil {
			return nil, fmt.Errorf("dispatching complaint event: %w", err)
		}
		return ev, nil

	default:
		logger.Warn("received notification with invalid notificationType",
			"notification_type", payload.NotificationType,
			"payload", string(rawBody),
		)
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedNotificationType, payload.NotificationType)
	}
}

func orEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return UnknownField
}
