package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// OutcomeMetricName is the CloudWatch metric counting transaction outcomes.
const OutcomeMetricName = "TransactionOutcome"

// MetricsPublisher wraps a CloudWatch client and a namespace.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetricsPublisher returns a MetricsPublisher bound to a namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CloudWatch: cw,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// RecordOutcome publishes a single count for the given transaction status.
func (p *MetricsPublisher) RecordOutcome(ctx context.Context, status string) error {
	now := p.nowFunc().UTC()
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &p.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(OutcomeMetricName),
				Dimensions: []cwtypes.Dimension{
					{Name: sdkaws.String("Status"), Value: sdkaws.String(status)},
				},
				Unit:      cwtypes.StandardUnitCount,
				Value:     sdkaws.Float64(1),
				Timestamp: &now,
			},
		},
	}

	if _, err := p.CloudWatch.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// NopMetrics discards outcomes; used when metrics are disabled.
type NopMetrics struct{}

func (NopMetrics) RecordOutcome(context.Context, string) error { return nil }
