package ses

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/ignite/ses-stats/internal/config"
)

// queryAPI is the subset of the SES classic API the client depends on.
type queryAPI interface {
	GetSendQuota(ctx context.Context, in *awsses.GetSendQuotaInput, opts ...func(*awsses.Options)) (*awsses.GetSendQuotaOutput, error)
	GetSendStatistics(ctx context.Context, in *awsses.GetSendStatisticsInput, opts ...func(*awsses.Options)) (*awsses.GetSendStatisticsOutput, error)
	ListVerifiedEmailAddresses(ctx context.Context, in *awsses.ListVerifiedEmailAddressesInput, opts ...func(*awsses.Options)) (*awsses.ListVerifiedEmailAddressesOutput, error)
}

// accountAPI is the subset of the SES v2 API used for account status.
type accountAPI interface {
	GetAccount(ctx context.Context, in *sesv2.GetAccountInput, opts ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// Client fetches raw SES responses. SDK output is mapped back into the wire
// envelope shapes so the normalization layer (and the dashboard cache) deal
// in a single representation.
type Client struct {
	query     queryAPI
	account   accountAPI
	accessKey string
	region    string
}

// NewClient creates an SES API client from static credentials.
func NewClient(ctx context.Context, cfg appconfig.SESConfig) (*Client, error) {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKey,
		cfg.SecretKey,
		"", // session token (empty for static creds)
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	queryClient := awsses.NewFromConfig(awsCfg, func(o *awsses.Options) {
		if cfg.RegionEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.RegionEndpoint)
		}
	})

	return &Client{
		query:     queryClient,
		account:   sesv2.NewFromConfig(awsCfg),
		accessKey: cfg.AccessKey,
		region:    cfg.Region,
	}, nil
}

// Region returns the configured AWS region.
func (c *Client) Region() string { return c.region }

// AccessKeyDisplay returns the access key masked for display.
func (c *Client) AccessKeyDisplay() string {
	if len(c.accessKey) <= 4 {
		return "****"
	}
	return c.accessKey[:4] + strings.Repeat("*", len(c.accessKey)-4)
}

// SendQuota fetches the account sending limits as a raw envelope.
func (c *Client) SendQuota(ctx context.Context) (*GetSendQuotaResponse, error) {
	out, err := c.query.GetSendQuota(ctx, &awsses.GetSendQuotaInput{})
	if err != nil {
		return nil, fmt.Errorf("fetching send quota: %w", err)
	}
	return &GetSendQuotaResponse{
		Envelope: &GetSendQuotaResult{
			Result: &QuotaInfo{
				Max24HourSend:   out.Max24HourSend,
				SentLast24Hours: out.SentLast24Hours,
				MaxSendRate:     out.MaxSendRate,
			},
		},
	}, nil
}

// SendStatistics fetches sending activity for the last two weeks as a raw
// envelope.
func (c *Client) SendStatistics(ctx context.Context) (*GetSendStatisticsResponse, error) {
	out, err := c.query.GetSendStatistics(ctx, &awsses.GetSendStatisticsInput{})
	if err != nil {
		return nil, fmt.Errorf("fetching send statistics: %w", err)
	}

	points := make([]SendDataPoint, 0, len(out.SendDataPoints))
	for _, dp := range out.SendDataPoints {
		ts := ""
		if dp.Timestamp != nil {
			ts = dp.Timestamp.UTC().Format(sesTimestampLayout)
		}
		points = append(points, SendDataPoint{
			Timestamp:        ts,
			Bounces:          strconv.FormatInt(dp.Bounces, 10),
			Complaints:       strconv.FormatInt(dp.Complaints, 10),
			DeliveryAttempts: strconv.FormatInt(dp.DeliveryAttempts, 10),
			Rejects:          strconv.FormatInt(dp.Rejects, 10),
		})
	}

	return &GetSendStatisticsResponse{
		Envelope: &GetSendStatisticsResult{
			Result: &SendStatistics{SendDataPoints: points},
		},
	}, nil
}

// VerifiedEmails fetches the verified sender addresses as a raw envelope.
func (c *Client) VerifiedEmails(ctx context.Context) (*ListVerifiedEmailAddressesResponse, error) {
	out, err := c.query.ListVerifiedEmailAddresses(ctx, &awsses.ListVerifiedEmailAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("listing verified emails: %w", err)
	}
	return &ListVerifiedEmailAddressesResponse{
		Envelope: &ListVerifiedEmailAddressesResult{
			Result: &VerifiedEmailList{VerifiedEmailAddresses: out.VerifiedEmailAddresses},
		},
	}, nil
}

// AccountStatus fetches the account sending status via the SES v2 API.
func (c *Client) AccountStatus(ctx context.Context) (*AccountStatus, error) {
	out, err := c.account.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return nil, fmt.Errorf("getting account status: %w", err)
	}

	status := &AccountStatus{
		SendingEnabled:   out.SendingEnabled,
		ProductionAccess: out.ProductionAccessEnabled,
	}
	if out.EnforcementStatus != nil {
		status.EnforcementStatus = *out.EnforcementStatus
	}
	return status, nil
}
