package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ignite/ses-stats/internal/notification"
	"github.com/ignite/ses-stats/internal/pkg/logger"
)

// snsEnvelope is the SNS wrapper SES notifications usually arrive in.
type snsEnvelope struct {
	Type         string `json:"Type"`
	MessageId    string `json:"MessageId"`
	TopicArn     string `json:"TopicArn"`
	Message      string `json:"Message"`
	SubscribeURL string `json:"SubscribeURL"`
}

// HandleSESNotification receives bounce/complaint notifications. The
// endpoint relies on URL secrecy rather than auth, matching how SNS HTTPS
// subscriptions are provisioned. SNS redelivers on any non-2xx response, so
// classification failures map to 400 and the sender retries nothing it
// shouldn't.
//
//	POST /webhooks/ses/notifications
func (h *Handlers) HandleSESNotification(w http.ResponseWriter, r *http.Request) {
	// Limit webhook payload to 5MB to prevent OOM
	r.Body = http.MaxBytesReader(w, r.Body, 5*1024*1024)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	payload, confirmed := h.unwrapSNS(body)
	if confirmed {
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.classifier.Classify(r.Context(), payload); err != nil {
		if errors.Is(err, notification.ErrMalformedPayload) ||
			errors.Is(err, notification.ErrUnrecognizedNotificationType) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Sink failure: let SNS redeliver.
		logger.Error("notification dispatch failed", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// unwrapSNS peels the SNS envelope off a webhook body. Bare SES payloads
// (no envelope) pass through untouched. The second return reports that the
// body was a subscription confirmation and has been handled.
func (h *Handlers) unwrapSNS(body []byte) ([]byte, bool) {
	env, ok := decodeSNSEnvelope(body)
	if !ok {
		return body, false
	}

	switch env.Type {
	case "SubscriptionConfirmation":
		h.confirmSubscription(env)
		return nil, true
	case "Notification":
		return []byte(env.Message), false
	default:
		return body, false
	}
}

// decodeSNSEnvelope reports whether the body carries an SNS envelope. A body
// that is not valid JSON, or has no Type field, is not one.
func decodeSNSEnvelope(body []byte) (snsEnvelope, bool) {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Type == "" {
		return snsEnvelope{}, false
	}
	return env, true
}

func (h *Handlers) confirmSubscription(env snsEnvelope) {
	logger.Info("sns subscription confirmation received", "topic_arn", env.TopicArn)
	if !strings.HasPrefix(env.SubscribeURL, "https://") {
		logger.Warn("ignoring non-https subscribe url", "url", env.SubscribeURL)
		return
	}
	resp, err := http.Get(env.SubscribeURL)
	if err != nil {
		logger.Error("sns subscription confirmation failed", "error", err.Error())
		return
	}
	resp.Body.Close()
	logger.Info("sns subscription confirmed", "topic_arn", env.TopicArn)
}
