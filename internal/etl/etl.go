// Package etl drives the install base munger pipelines: the one-shot serial
// number slot list (SlotListGenerator) and the recurring SN/SO insight
// munger (SNSOMunger).
//
// Both process the worklist strictly in order, one customer at a time.
package etl

import (
	"context"

	"github.com/EMC-Underground/munger3/internal/insight"
	"github.com/EMC-Underground/munger3/internal/installbase"
	"github.com/EMC-Underground/munger3/internal/report"
)

// WorklistLoader returns the customer GDUNs stored under key.
type WorklistLoader interface {
	Load(ctx context.Context, key string) ([]string, error)
}

// DocumentFetcher returns a customer's validated install base document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, customerID string) (*installbase.Document, error)
}

// InsightPublisher stores one customer's SN/SO mapping.
type InsightPublisher interface {
	Publish(ctx context.Context, customerID string, mapping []insight.Mapping) (key, etag string, err error)
}

// InsightExporter writes an additional columnar copy of a mapping.
type InsightExporter interface {
	Export(ctx context.Context, customerID string, mapping []insight.Mapping) (string, error)
}

// CycleRecorder receives the summary of every finished cycle.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, c report.Cycle) error
}
