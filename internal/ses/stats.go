package ses

import (
	"sort"
	"strconv"
	"time"
)

// NormalizeStats converts a raw GetSendStatistics response into an ordered
// sequence of Datapoints. Timestamps are parsed as UTC; when loc is non-nil
// each one is converted to that zone before sorting, so the sort key always
// reflects the value callers will see. The input is never mutated.
//
// A missing envelope key fails with *SchemaError, a malformed timestamp with
// *ParseError; neither returns partial results.
func NormalizeStats(raw *GetSendStatisticsResponse, loc *time.Location) ([]Datapoint, error) {
	if raw == nil || raw.Envelope == nil {
		return nil, &SchemaError{Key: "GetSendStatisticsResponse"}
	}
	if raw.Envelope.Result == nil {
		return nil, &SchemaError{Key: "GetSendStatisticsResult"}
	}
	if raw.Envelope.Result.SendDataPoints == nil {
		return nil, &SchemaError{Key: "SendDataPoints"}
	}

	wire := raw.Envelope.Result.SendDataPoints
	datapoints := make([]Datapoint, 0, len(wire))
	for _, dp := range wire {
		ts, err := time.ParseInLocation(sesTimestampLayout, dp.Timestamp, time.UTC)
		if err != nil {
			return nil, &ParseError{Field: "Timestamp", Value: dp.Timestamp, Err: err}
		}
		if loc != nil {
			ts = ts.In(loc)
		}
		datapoints = append(datapoints, Datapoint{
			Timestamp:        ts,
			Bounces:          dp.Bounces,
			Complaints:       dp.Complaints,
			DeliveryAttempts: dp.DeliveryAttempts,
			Rejects:          dp.Rejects,
		})
	}

	sort.Slice(datapoints, func(i, j int) bool {
		return datapoints[i].Timestamp.Before(datapoints[j].Timestamp)
	})

	return datapoints, nil
}

// ExtractQuota projects a raw GetSendQuota response down to the quota
// payload. No validation beyond missing-key detection.
func ExtractQuota(raw *GetSendQuotaResponse) (QuotaInfo, error) {
	if raw == nil || raw.Envelope == nil {
		return QuotaInfo{}, &SchemaError{Key: "GetSendQuotaResponse"}
	}
	if raw.Envelope.Result == nil {
		return QuotaInfo{}, &SchemaError{Key: "GetSendQuotaResult"}
	}
	return *raw.Envelope.Result, nil
}

// ExtractVerifiedEmails projects a raw ListVerifiedEmailAddresses response
// down to a lexicographically sorted address list. Duplicates pass through.
func ExtractVerifiedEmails(raw *ListVerifiedEmailAddressesResponse) ([]string, error) {
	if raw == nil || raw.Envelope == nil {
		return nil, &SchemaError{Key: "ListVerifiedEmailAddressesResponse"}
	}
	if raw.Envelope.Result == nil {
		return nil, &SchemaError{Key: "ListVerifiedEmailAddressesResult"}
	}

	emails := make([]string, len(raw.Envelope.Result.VerifiedEmailAddresses))
	copy(emails, raw.Envelope.Result.VerifiedEmailAddresses)
	sort.Strings(emails)
	return emails, nil
}

// Summarize reduces a Datapoint sequence to aggregate counters in a single
// pass. Any non-numeric count fails the whole summarization with *ParseError.
// An empty sequence yields the zero summary, the identity under Add.
func Summarize(datapoints []Datapoint) (StatsSummary, error) {
	var sum StatsSummary
	for _, dp := range datapoints {
		bounces, err := parseCount("Bounces", dp.Bounces)
		if err != nil {
			return StatsSummary{}, err
		}
		complaints, err := parseCount("Complaints", dp.Complaints)
		if err != nil {
			return StatsSummary{}, err
		}
		attempts, err := parseCount("DeliveryAttempts", dp.DeliveryAttempts)
		if err != nil {
			return StatsSummary{}, err
		}
		rejects, err := parseCount("Rejects", dp.Rejects)
		if err != nil {
			return StatsSummary{}, err
		}

		sum.Bounces += bounces
		sum.Complaints += complaints
		sum.DeliveryAttempts += attempts
		sum.Rejects += rejects
	}
	return sum, nil
}

func parseCount(field, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: value, Err: err}
	}
	return n, nil
}
