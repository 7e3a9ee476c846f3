// Package db records munger cycle summaries in DynamoDB.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/EMC-Underground/munger3/internal/report"
)

func LedgerPK(mungerVersion string) string {
	return fmt.Sprintf("MUNGER#%s", mungerVersion)
}

func LedgerSK(startedAt time.Time) string {
	return fmt.Sprintf("CYCLE#%s", startedAt.UTC().Format(time.RFC3339))
}

// CycleItem is the stored form of one cycle.
type CycleItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	MungerVersion string                   `dynamodbav:"MungerVersion"`
	Customers     int                      `dynamodbav:"Customers"`
	Published     int                      `dynamodbav:"Published"`
	Failed        int                      `dynamodbav:"Failed"`
	Exported      int                      `dynamodbav:"Exported"`
	FailedGDUNs   []string                 `dynamodbav:"FailedGDUNs,omitempty"`
	Failures      []report.CustomerFailure `dynamodbav:"Failures,omitempty"`
	LoadError     string                   `dynamodbav:"LoadError,omitempty"`
	DryRun        bool                     `dynamodbav:"DryRun"`
	StartedAt     string                   `dynamodbav:"StartedAt"`
	FinishedAt    string                   `dynamodbav:"FinishedAt"`
	// ExpiresAt is the table's TTL attribute, in epoch seconds.
	ExpiresAt int64 `dynamodbav:"ExpiresAt"`
}

// Ledger writes one item per cycle.
type Ledger struct {
	ddb   PutItemAPI
	table string
	ttl   time.Duration
}

func NewLedger(ddb PutItemAPI, table string, ttl time.Duration) *Ledger {
	return &Ledger{ddb: ddb, table: table, ttl: ttl}
}

// Item builds the stored form of c.
func (l *Ledger) Item(c report.Cycle) CycleItem {
	item := CycleItem{
		PK:            LedgerPK(c.MungerVersion),
		SK:            LedgerSK(c.StartedAt),
		MungerVersion: c.MungerVersion,
		Customers:     c.Customers,
		Published:     c.Published,
		Failed:        c.Failed(),
		Exported:      c.Exported,
		FailedGDUNs:   c.FailedGDUNs(),
		Failures:      c.Failures,
		LoadError:     c.LoadError,
		DryRun:        c.DryRun,
		StartedAt:     c.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:    c.FinishedAt.UTC().Format(time.RFC3339),
	}
	if l.ttl > 0 {
		item.ExpiresAt = c.FinishedAt.Add(l.ttl).Unix()
	}
	return item
}

// RecordCycle stores c.
func (l *Ledger) RecordCycle(ctx context.Context, c report.Cycle) error {
	av, err := attributevalue.MarshalMap(l.Item(c))
	if err != nil {
		return fmt.Errorf("marshal cycle item: %w", err)
	}
	_, err = l.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("ledger PutItem: %w", err)
	}
	return nil
}
