// Package alert publishes operational events to an out-of-band channel.
// Failures here must never affect the request path; callers treat every
// publish as best-effort.
package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"trip-recommender/internal/common/logger"
)

// SNSAPI is the subset of the SNS client used by the notifier.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESAPI is the subset of the SES client used by the notifier.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Notifier publishes operational alerts over SNS and report emails over SES.
// Either client may be nil, in which case the corresponding channel is a no-op.
type Notifier struct {
	snsClient SNSAPI
	sesClient SESAPI
	topicARN  string
	fromEmail string
	logger    logger.Logger
}

type Option func(*Notifier)

func WithSNS(client SNSAPI, topicARN string) Option {
	return func(n *Notifier) {
		n.snsClient = client
		n.topicARN = topicARN
	}
}

func WithSES(client SESAPI, fromEmail string) Option {
	return func(n *Notifier) {
		n.sesClient = client
		n.fromEmail = fromEmail
	}
}

func NewNotifier(log logger.Logger, opts ...Option) *Notifier {
	n := &Notifier{logger: log}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewAWSClients builds real SNS and SES clients for the given region.
func NewAWSClients(ctx context.Context, region string) (*sns.Client, *ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, nil, err
	}
	return sns.NewFromConfig(cfg), ses.NewFromConfig(cfg), nil
}

// PublishOperational sends a short operational event to the SNS topic.
func (n *Notifier) PublishOperational(ctx context.Context, subject, message string) {
	if n.snsClient == nil || n.topicARN == "" {
		return
	}

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		n.logger.Warn("operational alert publish failed", map[string]interface{}{
			"subject": subject,
			"error":   err,
		})
	}
}

// SendReportEmail mails an evaluation report to the given recipient.
func (n *Notifier) SendReportEmail(ctx context.Context, to, subject, body string) error {
	if n.sesClient == nil {
		return fmt.Errorf("ses client not configured")
	}

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		n.logger.Error("report email send failed", map[string]interface{}{
			"to":    to,
			"error": err,
		})
	}
	return err
}
