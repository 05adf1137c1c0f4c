package api

import (
	"context"
	"time"

	"github.com/ignite/ses-stats/internal/notification"
	"github.com/ignite/ses-stats/internal/ses"
)

// StatsClient is the remote statistics API the dashboard depends on.
type StatsClient interface {
	SendQuota(ctx context.Context) (*ses.GetSendQuotaResponse, error)
	SendStatistics(ctx context.Context) (*ses.GetSendStatisticsResponse, error)
	VerifiedEmails(ctx context.Context) (*ses.ListVerifiedEmailAddressesResponse, error)
	AccountStatus(ctx context.Context) (*ses.AccountStatus, error)
	AccessKeyDisplay() string
}

// ResultCache is the dashboard result cache.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	client     StatsClient
	cache      ResultCache
	classifier *notification.Classifier
	location   *time.Location
	timeout    time.Duration
	health     *HealthChecker
}

// SetHealthChecker wires dependency probes into GET /health. Without one the
// endpoint reports a bare "healthy".
func (h *Handlers) SetHealthChecker(hc *HealthChecker) {
	h.health = hc
}

// NewHandlers creates the handler set. cache may be nil (caching disabled);
// location may be nil (UTC-only display).
func NewHandlers(client StatsClient, cache ResultCache, classifier *notification.Classifier, location *time.Location, timeout time.Duration) *Handlers {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{
		client:     client,
		cache:      cache,
		classifier: classifier,
		location:   location,
		timeout:    timeout,
	}
}
