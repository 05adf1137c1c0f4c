package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSinks captures emitted events for assertions.
type recordingSinks struct {
	bounces      []BounceEvent
	complaints   []ComplaintEvent
	bounceErr    error
	complaintErr error
}

func (r *recordingSinks) BounceReceived(ctx context.Context, ev BounceEvent) error {
	if r.bounceErr != nil {
		return r.bounceErr
	}
	r.bounces = append(r.bounces, ev)
	return nil
}

func (r *recordingSinks) ComplaintReceived(ctx context.Context, ev ComplaintEvent) error {
	if r.complaintErr != nil {
		return r.complaintErr
	}
	r.complaints = append(r.complaints, ev)
	return nil
}

func newTestClassifier() (*Classifier, *recordingSinks) {
	sinks := &recordingSinks{}
	return NewClassifier(sinks, sinks), sinks
}

func TestClassifyBounce(t *testing.T) {
	c, sinks := newTestClassifier()

	body := `{
		"notificationType": "Bounce",
		"mail": {"m": 1},
		"bounce": {"feedbackId": "f1", "bounceType": "Permanent", "bounceSubType": "General"}
	}`
	ev, err := c.Classify(context.Background(), []byte(body))
	require.NoError(t, err)

	bounce, ok := ev.(BounceEvent)
	require.True(t, ok, "expected a BounceEvent")
	assert.Equal(t, map[string]interface{}{"m": float64(1)}, bounce.Mail)
	assert.Equal(t, "f1", bounce.FeedbackID)
	assert.Equal(t, "Permanent", bounce.BounceType)
	assert.Equal(t, "General", bounce.BounceSubType)

	require.Len(t, sinks.bounces, 1, "exactly one emission per classified call")
	assert.Empty(t, sinks.complaints)
	assert.Equal(t, "f1", sinks.bounces[0].Bounce["feedbackId"])
}

func TestClassifyComplaint(t *testing.T) {
	c, sinks := newTestClassifier()

	body := `{
		"notificationType": "Complaint",
		"mail": {"messageId": "abc"},
		"complaint": {"feedbackId": "c9", "complaintFeedbackType": "abuse"}
	}`
	ev, err := c.Classify(context.Background(), []byte(body))
	require.NoError(t, err)

	complaint, ok := ev.(ComplaintEvent)
	require.True(t, ok, "expected a ComplaintEvent")
	assert.Equal(t, "c9", complaint.FeedbackID)
	assert.Equal(t, "abuse", complaint.FeedbackType)

	require.Len(t, sinks.complaints, 1)
	assert.Empty(t, sinks.bounces)
}

func TestClassifyMissingSubObjects(t *testing.T) {
	c, sinks := newTestClassifier()

	// Missing complaint key is not an error: details default to an empty map
	// and identifying fields to the unknown sentinel.
	_, err := c.Classify(context.Background(), []byte(`{"notificationType": "Complaint"}`))
	require.NoError(t, err)
	require.Len(t, sinks.complaints, 1)
	assert.NotNil(t, sinks.complaints[0].Complaint)
	assert.Empty(t, sinks.complaints[0].Complaint)
	assert.NotNil(t, sinks.complaints[0].Mail)
	assert.Equal(t, UnknownField, sinks.complaints[0].FeedbackID)
	assert.Equal(t, UnknownField, sinks.complaints[0].FeedbackType)

	_, err = c.Classify(context.Background(), []byte(`{"notificationType": "Bounce"}`))
	require.NoError(t, err)
	require.Len(t, sinks.bounces, 1)
	assert.Empty(t, sinks.bounces[0].Bounce)
	assert.Equal(t, UnknownField, sinks.bounces[0].BounceType)
}

func TestClassifyMalformedPayload(t *testing.T) {
	c, sinks := newTestClassifier()

	ev, err := c.Classify(context.Background(), []byte(`{not json`))
	require.ErrorIs(t, err, ErrMalformedPayload)
	assert.Nil(t, ev)
	assert.Empty(t, sinks.bounces, "nothing emitted on malformed payload")
	assert.Empty(t, sinks.complaints)
}

func TestClassifyUnrecognizedType(t *testing.T) {
	c, sinks := newTestClassifier()

	for _, body := range []string{
		`{"notificationType": "Other"}`,
		`{"notificationType": ""}`,
		`{}`,
	} {
		ev, err := c.Classify(context.Background(), []byte(body))
		require.ErrorIs(t, err, ErrUnrecognizedNotificationType, "body: %s", body)
		assert.Nil(t, ev)
	}
	assert.Empty(t, sinks.bounces)
	assert.Empty(t, sinks.complaints)
}

func TestClassifySinkFailurePropagates(t *testing.T) {
	sinks := &recordingSinks{bounceErr: errors.New("db down")}
	c := NewClassifier(sinks, sinks)

	_, err := c.Classify(context.Background(), []byte(`{"notificationType": "Bounce"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedPayload)
	assert.NotErrorIs(t, err, ErrUnrecognizedNotificationType)
}

func TestFanoutNotifiesAllSinks(t *testing.T) {
	a := &recordingSinks{}
	b := &recordingSinks{bounceErr: errors.New("listener b failed")}
	d := &recordingSinks{}

	fan := BounceFanout{a, b, d}
	err := fan.BounceReceived(context.Background(), BounceEvent{FeedbackID: "f1"})
	require.Error(t, err)

	// A failing listener does not block the others.
	assert.Len(t, a.bounces, 1)
	assert.Len(t, d.bounces, 1)
}
