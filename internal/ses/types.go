package ses

import (
	"time"
)

// sesTimestampLayout is the timestamp format used by SendDataPoints.
// The trailing Z is a literal: SES always reports UTC.
const sesTimestampLayout = "2006-01-02T15:04:05Z"

// GetSendStatisticsResponse is the raw envelope of a GetSendStatistics call.
// Inner fields are pointers so a missing envelope key is detectable.
type GetSendStatisticsResponse struct {
	Envelope *GetSendStatisticsResult `json:"GetSendStatisticsResponse"`
}

// GetSendStatisticsResult is the inner envelope wrapping the statistics payload.
type GetSendStatisticsResult struct {
	Result *SendStatistics `json:"GetSendStatisticsResult"`
}

// SendStatistics holds the list of sending activity samples.
type SendStatistics struct {
	SendDataPoints []SendDataPoint `json:"SendDataPoints"`
}

// SendDataPoint is one 15-minute sending activity sample as delivered on the
// wire. All values are strings; Summarize owns numeric interpretation.
type SendDataPoint struct {
	Timestamp        string `json:"Timestamp"`
	Bounces          string `json:"Bounces"`
	Complaints       string `json:"Complaints"`
	DeliveryAttempts string `json:"DeliveryAttempts"`
	Rejects          string `json:"Rejects"`
}

// Datapoint is a normalized sending activity sample. The timestamp has been
// parsed (and optionally converted to the display timezone); the counts stay
// decimal strings as delivered.
type Datapoint struct {
	Timestamp        time.Time `json:"timestamp"`
	Bounces          string    `json:"bounces"`
	Complaints       string    `json:"complaints"`
	DeliveryAttempts string    `json:"delivery_attempts"`
	Rejects          string    `json:"rejects"`
}

// GetSendQuotaResponse is the raw envelope of a GetSendQuota call.
type GetSendQuotaResponse struct {
	Envelope *GetSendQuotaResult `json:"GetSendQuotaResponse"`
}

// GetSendQuotaResult is the inner envelope wrapping the quota payload.
type GetSendQuotaResult struct {
	Result *QuotaInfo `json:"GetSendQuotaResult"`
}

// QuotaInfo holds the account sending limits.
type QuotaInfo struct {
	Max24HourSend   float64 `json:"Max24HourSend"`
	SentLast24Hours float64 `json:"SentLast24Hours"`
	MaxSendRate     float64 `json:"MaxSendRate"`
}

// Remaining24Hours returns the unused portion of the 24-hour quota.
func (q QuotaInfo) Remaining24Hours() float64 {
	return q.Max24HourSend - q.SentLast24Hours
}

// ListVerifiedEmailAddressesResponse is the raw envelope of a
// ListVerifiedEmailAddresses call.
type ListVerifiedEmailAddressesResponse struct {
	Envelope *ListVerifiedEmailAddressesResult `json:"ListVerifiedEmailAddressesResponse"`
}

// ListVerifiedEmailAddressesResult is the inner envelope wrapping the
// verified address list.
type ListVerifiedEmailAddressesResult struct {
	Result *VerifiedEmailList `json:"ListVerifiedEmailAddressesResult"`
}

// VerifiedEmailList holds the verified sender addresses.
type VerifiedEmailList struct {
	VerifiedEmailAddresses []string `json:"VerifiedEmailAddresses"`
}

// StatsSummary aggregates a Datapoint sequence.
type StatsSummary struct {
	Bounces          int64 `json:"total_bounces"`
	Complaints       int64 `json:"total_complaints"`
	DeliveryAttempts int64 `json:"total_delivery_attempts"`
	Rejects          int64 `json:"total_rejects"`
}

// Add returns the field-wise sum of two summaries.
func (s StatsSummary) Add(other StatsSummary) StatsSummary {
	return StatsSummary{
		Bounces:          s.Bounces + other.Bounces,
		Complaints:       s.Complaints + other.Complaints,
		DeliveryAttempts: s.DeliveryAttempts + other.DeliveryAttempts,
		Rejects:          s.Rejects + other.Rejects,
	}
}

// AccountStatus is the account sending status shown on the dashboard.
type AccountStatus struct {
	SendingEnabled    bool   `json:"sending_enabled"`
	ProductionAccess  bool   `json:"production_access"`
	EnforcementStatus string `json:"enforcement_status,omitempty"`
}
