package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/ses-stats/internal/notification"
)

func TestBounceReceived(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO ses_bounces").
		WithArgs(sqlmock.AnyArg(), "msg-1", "f1", "Permanent", "General", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := New(db)
	err = s.BounceReceived(context.Background(), notification.BounceEvent{
		Mail: map[string]interface{}{"messageId": "msg-1"},
		Bounce: map[string]interface{}{
			"feedbackId": "f1",
			"bouncedRecipients": []interface{}{
				map[string]interface{}{"emailAddress": "user@example.com"},
			},
		},
		FeedbackID:    "f1",
		BounceType:    "Permanent",
		BounceSubType: "General",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintReceived(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO ses_complaints").
		WithArgs(sqlmock.AnyArg(), "", "c9", "abuse", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := New(db)
	err = s.ComplaintReceived(context.Background(), notification.ComplaintEvent{
		Mail:         map[string]interface{}{},
		Complaint:    map[string]interface{}{"feedbackId": "c9"},
		FeedbackID:   "c9",
		FeedbackType: "abuse",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipientEmails(t *testing.T) {
	details := map[string]interface{}{
		"bouncedRecipients": []interface{}{
			map[string]interface{}{"emailAddress": "a@example.com", "status": "5.1.1"},
			map[string]interface{}{"emailAddress": "b@example.com"},
			"garbage entry",
			map[string]interface{}{"status": "no address"},
		},
	}
	assert.Equal(t, []string{"a@example.com", "b@example.com"},
		recipientEmails(details, "bouncedRecipients"))

	// Missing or malformed lists degrade to empty.
	assert.Empty(t, recipientEmails(map[string]interface{}{}, "bouncedRecipients"))
	assert.Empty(t, recipientEmails(map[string]interface{}{"bouncedRecipients": "nope"}, "bouncedRecipients"))
}

func TestMessageID(t *testing.T) {
	assert.Equal(t, "m1", messageID(map[string]interface{}{"messageId": "m1"}))
	assert.Equal(t, "", messageID(map[string]interface{}{"messageId": 42}))
	assert.Equal(t, "", messageID(nil))
}
