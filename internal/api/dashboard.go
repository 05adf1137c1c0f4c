package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ignite/ses-stats/internal/pkg/logger"
	"github.com/ignite/ses-stats/internal/ses"
)

// dashboardCacheKey is global: the dashboard shows account-level data that
// is identical for every privileged user.
const dashboardCacheKey = "ses:dashboard"

// DashboardResponse is the rendered dashboard payload.
type DashboardResponse struct {
	Title          string             `json:"title"`
	Datapoints     []ses.Datapoint    `json:"datapoints"`
	Quota24h       float64            `json:"quota_24h"`
	Sent24h        float64            `json:"sent_24h"`
	Remaining24h   float64            `json:"remaining_24h"`
	PerSecondRate  float64            `json:"per_second_rate"`
	VerifiedEmails []string           `json:"verified_emails"`
	Summary        ses.StatsSummary   `json:"summary"`
	AccessKey      string             `json:"access_key"`
	LocalTime      bool               `json:"local_time"`
	Account        *ses.AccountStatus `json:"account,omitempty"`
}

// GetDashboard serves the statistics dashboard, caching assembled results.
//
//	GET /api/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, dashboardCacheKey)
		if err != nil {
			logger.Warn("dashboard cache read failed", "error", err.Error())
		} else if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	payload, err := h.assembleDashboard(ctx)
	if err != nil {
		logger.Error("dashboard assembly failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to assemble dashboard")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode dashboard")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, dashboardCacheKey, body); err != nil {
			logger.Warn("dashboard cache write failed", "error", err.Error())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// assembleDashboard fetches the three raw responses, runs them through the
// extractors and builds the response payload. SchemaError/ParseError from
// the extractors propagate unrecovered.
func (h *Handlers) assembleDashboard(ctx context.Context) (*DashboardResponse, error) {
	quotaRaw, err := h.client.SendQuota(ctx)
	if err != nil {
		return nil, err
	}
	emailsRaw, err := h.client.VerifiedEmails(ctx)
	if err != nil {
		return nil, err
	}
	statsRaw, err := h.client.SendStatistics(ctx)
	if err != nil {
		return nil, err
	}

	quota, err := ses.ExtractQuota(quotaRaw)
	if err != nil {
		return nil, err
	}
	emails, err := ses.ExtractVerifiedEmails(emailsRaw)
	if err != nil {
		return nil, err
	}
	datapoints, err := ses.NormalizeStats(statsRaw, h.location)
	if err != nil {
		return nil, err
	}
	summary, err := ses.Summarize(datapoints)
	if err != nil {
		return nil, err
	}

	payload := &DashboardResponse{
		Title:          "SES Statistics",
		Datapoints:     datapoints,
		Quota24h:       quota.Max24HourSend,
		Sent24h:        quota.SentLast24Hours,
		Remaining24h:   quota.Remaining24Hours(),
		PerSecondRate:  quota.MaxSendRate,
		VerifiedEmails: emails,
		Summary:        summary,
		AccessKey:      h.client.AccessKeyDisplay(),
		LocalTime:      h.location != nil,
	}

	// Account status is a non-critical enrichment; the dashboard still
	// renders when the v2 API is unavailable.
	account, err := h.client.AccountStatus(ctx)
	if err != nil {
		logger.Warn("fetching account status failed", "error", err.Error())
	} else {
		payload.Account = account
	}

	return payload, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
