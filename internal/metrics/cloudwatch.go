package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// CloudWatchAPI defines the CloudWatch client interface used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Emitter sends cycle metrics to CloudWatch.
type Emitter struct {
	client    CloudWatchAPI
	namespace string
}

// NewEmitter creates a CloudWatch metrics emitter.
func NewEmitter(cfg aws.Config, namespace string) *Emitter {
	return &Emitter{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}
}

// EmitSummary publishes one datapoint per cycle counter.
func (e *Emitter) EmitSummary(ctx context.Context, summary models.CycleSummary, errors []string) error {
	metrics := []types.MetricDatum{
		metricDatum("Candidates", summary.Candidates),
		metricDatum("RosterUsers", summary.RosterUsers),
		metricDatum("PendingInvitations", summary.PendingInvitations),
		metricDatum("ActionsPlanned", summary.ActionsPlanned),
		metricDatum("ActionsExecuted", summary.ActionsExecuted),
		metricDatum("SoftFailures", summary.SoftFailures),
		metricDatum("Reinvited", summary.Reinvited),
		metricDatum("Invited", summary.Invited),
		metricDatum("RolesUpdated", summary.RolesUpdated),
		metricDatum("GroupsCreated", summary.GroupsCreated),
		metricDatum("TestersAdded", summary.TestersAdded),
		metricDatum("Errors", len(errors)),
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(e.namespace),
		MetricData: metrics,
	})
	return err
}

func metricDatum(name string, value int) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Unit:       types.StandardUnitCount,
		Value:      aws.Float64(float64(value)),
	}
}
