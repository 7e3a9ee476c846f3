// Package notify sends munger cycle summaries to an SNS topic.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/EMC-Underground/munger3/internal/report"
)

// PublishAPI is the subset of the SNS client the notifier uses.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// maxListed caps how many failing customers are named in one message.
const maxListed = 50

type SNSNotifier struct {
	client   PublishAPI
	topicArn string
}

func NewSNSNotifier(client PublishAPI, topicArn string) *SNSNotifier {
	return &SNSNotifier{client: client, topicArn: topicArn}
}

// RecordCycle publishes a plain text summary of c.
func (n *SNSNotifier) RecordCycle(ctx context.Context, c report.Cycle) error {
	subject, message := BuildMessage(c)
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// BuildMessage renders the subject and body for c.
func BuildMessage(c report.Cycle) (subject string, body string) {
	status := "completed"
	switch {
	case c.LoadError != "":
		status = "worklist load failed"
	case !c.Complete():
		status = "interrupted"
	case c.Failed() > 0:
		status = "completed with failures"
	}
	subject = fmt.Sprintf("munger v%s: %s", c.MungerVersion, status)

	lines := []string{
		"Install base munger cycle",
		"",
		fmt.Sprintf("Version: %s", c.MungerVersion),
		fmt.Sprintf("Started: %s", c.StartedAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("Finished: %s", c.FinishedAt.UTC().Format(time.RFC3339)),
	}
	if c.DryRun {
		lines = append(lines, "Dry run: yes")
	}
	if c.LoadError != "" {
		lines = append(lines, fmt.Sprintf("Worklist error: %s", c.LoadError))
		return subject, strings.Join(lines, "\n")
	}

	lines = append(lines,
		fmt.Sprintf("Customers: %d", c.Customers),
		fmt.Sprintf("Published: %d", c.Published),
		fmt.Sprintf("Failed: %d", c.Failed()),
	)
	if c.Exported > 0 {
		lines = append(lines, fmt.Sprintf("Parquet exports: %d", c.Exported))
	}
	if c.Failed() > 0 {
		lines = append(lines, "", "Failures:")
		for i, f := range c.Failures {
			if i == maxListed {
				lines = append(lines, fmt.Sprintf("... and %d more", c.Failed()-maxListed))
				break
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", f.GDUN, f.Error))
		}
	}
	return subject, strings.Join(lines, "\n")
}
