package ses

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsFixture(t *testing.T, body string) *GetSendStatisticsResponse {
	t.Helper()
	var raw GetSendStatisticsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return &raw
}

const unorderedStats = `{
	"GetSendStatisticsResponse": {
		"GetSendStatisticsResult": {
			"SendDataPoints": [
				{"Timestamp": "2026-03-02T12:30:00Z", "Bounces": "2", "Complaints": "0", "DeliveryAttempts": "120", "Rejects": "1"},
				{"Timestamp": "2026-03-01T08:00:00Z", "Bounces": "1", "Complaints": "1", "DeliveryAttempts": "90", "Rejects": "0"},
				{"Timestamp": "2026-03-01T23:45:00Z", "Bounces": "0", "Complaints": "0", "DeliveryAttempts": "15", "Rejects": "0"}
			]
		}
	}
}`

func TestNormalizeStatsSortsAscending(t *testing.T) {
	raw := statsFixture(t, unorderedStats)

	datapoints, err := NormalizeStats(raw, nil)
	require.NoError(t, err)
	require.Len(t, datapoints, 3)

	for i := 1; i < len(datapoints); i++ {
		assert.True(t, datapoints[i-1].Timestamp.Before(datapoints[i].Timestamp),
			"datapoints must be sorted ascending")
	}

	assert.Equal(t, "1", datapoints[0].Bounces)
	assert.Equal(t, "90", datapoints[0].DeliveryAttempts)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC), datapoints[2].Timestamp)
}

func TestNormalizeStatsDoesNotMutateInput(t *testing.T) {
	raw := statsFixture(t, unorderedStats)
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	_, err = NormalizeStats(raw, time.FixedZone("UTC+5", 5*3600))
	require.NoError(t, err)

	after, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "input must be unmodified")
}

func TestNormalizeStatsTimezoneRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	raw := statsFixture(t, unorderedStats)
	converted, err := NormalizeStats(raw, loc)
	require.NoError(t, err)

	utc, err := NormalizeStats(raw, nil)
	require.NoError(t, err)

	require.Len(t, converted, len(utc))
	for i := range converted {
		assert.Equal(t, loc.String(), converted[i].Timestamp.Location().String())
		// Zone conversion is lossless: the UTC instant is unchanged.
		assert.True(t, converted[i].Timestamp.Equal(utc[i].Timestamp))
	}
}

func TestNormalizeStatsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"missing result", `{"GetSendStatisticsResponse": {}}`},
		{"missing datapoints", `{"GetSendStatisticsResponse": {"GetSendStatisticsResult": {}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := statsFixture(t, tt.body)
			_, err := NormalizeStats(raw, nil)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
		})
	}

	t.Run("malformed timestamp", func(t *testing.T) {
		raw := statsFixture(t, `{
			"GetSendStatisticsResponse": {
				"GetSendStatisticsResult": {
					"SendDataPoints": [
						{"Timestamp": "2026-03-01T08:00:00Z", "Bounces": "0", "Complaints": "0", "DeliveryAttempts": "1", "Rejects": "0"},
						{"Timestamp": "not-a-time", "Bounces": "0", "Complaints": "0", "DeliveryAttempts": "1", "Rejects": "0"}
					]
				}
			}
		}`)
		datapoints, err := NormalizeStats(raw, nil)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "Timestamp", parseErr.Field)
		assert.Nil(t, datapoints, "no partial results on failure")
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := NormalizeStats(nil, nil)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})
}

func TestNormalizeStatsEmptyList(t *testing.T) {
	raw := statsFixture(t, `{
		"GetSendStatisticsResponse": {"GetSendStatisticsResult": {"SendDataPoints": []}}
	}`)
	datapoints, err := NormalizeStats(raw, nil)
	require.NoError(t, err)
	assert.Empty(t, datapoints)
}

func TestExtractQuota(t *testing.T) {
	var raw GetSendQuotaResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"GetSendQuotaResponse": {
			"GetSendQuotaResult": {
				"Max24HourSend": 50000.0,
				"SentLast24Hours": 1200.5,
				"MaxSendRate": 14.0
			}
		}
	}`), &raw))

	quota, err := ExtractQuota(&raw)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, quota.Max24HourSend)
	assert.Equal(t, 1200.5, quota.SentLast24Hours)
	assert.Equal(t, 14.0, quota.MaxSendRate)
	assert.Equal(t, 48799.5, quota.Remaining24Hours())

	_, err = ExtractQuota(&GetSendQuotaResponse{})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "GetSendQuotaResult", schemaErr.Key)
}

func TestExtractVerifiedEmails(t *testing.T) {
	var raw ListVerifiedEmailAddressesResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"ListVerifiedEmailAddressesResponse": {
			"ListVerifiedEmailAddressesResult": {
				"VerifiedEmailAddresses": ["b@x", "a@x", "b@x"]
			}
		}
	}`), &raw))

	emails, err := ExtractVerifiedEmails(&raw)
	require.NoError(t, err)
	// Sorted, duplicates preserved.
	assert.Equal(t, []string{"a@x", "b@x", "b@x"}, emails)

	// Sorting must not reorder the caller's slice.
	assert.Equal(t, []string{"b@x", "a@x", "b@x"},
		raw.Envelope.Result.VerifiedEmailAddresses)

	_, err = ExtractVerifiedEmails(&ListVerifiedEmailAddressesResponse{})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSummarizeEmpty(t *testing.T) {
	sum, err := Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, StatsSummary{}, sum)
}

func TestSummarizeAdditive(t *testing.T) {
	a := []Datapoint{
		{Bounces: "1", Complaints: "0", DeliveryAttempts: "100", Rejects: "2"},
		{Bounces: "3", Complaints: "1", DeliveryAttempts: "250", Rejects: "0"},
	}
	b := []Datapoint{
		{Bounces: "0", Complaints: "2", DeliveryAttempts: "75", Rejects: "1"},
	}

	sumA, err := Summarize(a)
	require.NoError(t, err)
	sumB, err := Summarize(b)
	require.NoError(t, err)
	sumAB, err := Summarize(append(append([]Datapoint{}, a...), b...))
	require.NoError(t, err)

	assert.Equal(t, sumA.Add(sumB), sumAB)
	assert.Equal(t, StatsSummary{Bounces: 4, Complaints: 3, DeliveryAttempts: 425, Rejects: 3}, sumAB)
}

func TestSummarizeMalformedCount(t *testing.T) {
	_, err := Summarize([]Datapoint{
		{Bounces: "1", Complaints: "0", DeliveryAttempts: "abc", Rejects: "0"},
	})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "DeliveryAttempts", parseErr.Field)
	assert.Equal(t, "abc", parseErr.Value)
}
