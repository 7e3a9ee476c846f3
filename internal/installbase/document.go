package installbase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EMC-Underground/munger3/internal/blobstore"
)

// Row is one install base line item.
type Row struct {
	SerialNumber string `json:"ITEM_SERIAL_NUMBER"`
	SalesOrder   string `json:"SALES_ORDER"`
}

// Document is a customer's install base after both decode stages.
type Document struct {
	RecordCount int   `json:"recordCount"`
	Rows        []Row `json:"rows"`
}

// wireDocument accepts the legacy "records" count alongside "recordCount".
type wireDocument struct {
	RecordCount *int       `json:"recordCount"`
	Records     *int       `json:"records"`
	Rows        []*wireRow `json:"rows"`
}

type wireRow struct {
	SerialNumber *string `json:"ITEM_SERIAL_NUMBER"`
	SalesOrder   string  `json:"SALES_ORDER"`
}

// DocumentKey is the store key of a customer's install base document.
func DocumentKey(customerID string) string {
	return customerID + ".json"
}

// Fetcher loads and validates per-customer install base documents.
type Fetcher struct {
	store blobstore.Getter
}

func NewFetcher(store blobstore.Getter) *Fetcher {
	return &Fetcher{store: store}
}

// Fetch returns the validated document for customerID.
func (f *Fetcher) Fetch(ctx context.Context, customerID string) (*Document, error) {
	key := DocumentKey(customerID)
	body, err := f.store.Get(ctx, key)
	if err != nil {
		return nil, &FetchError{Key: key, Err: err}
	}
	return DecodeDocument(key, body)
}

// DecodeDocument undoes the producer's double encoding: the stored body is a
// JSON string whose contents are the JSON document.
func DecodeDocument(key string, body []byte) (*Document, error) {
	var inner string
	if err := json.Unmarshal(body, &inner); err != nil {
		return nil, &MalformedPayloadError{Key: key, Reason: "outer decode: expected a JSON string", Err: err}
	}

	var w wireDocument
	if err := json.Unmarshal([]byte(inner), &w); err != nil {
		return nil, &MalformedPayloadError{Key: key, Reason: "inner decode", Err: err}
	}

	count := w.RecordCount
	if count == nil {
		count = w.Records
	}
	if count == nil {
		return nil, &MalformedPayloadError{Key: key, Reason: "missing recordCount"}
	}
	if *count < 1 {
		return nil, &EmptyPayloadError{Key: key, RecordCount: *count}
	}
	if w.Rows == nil {
		return nil, &MalformedPayloadError{Key: key, Reason: "missing rows"}
	}

	rows := make([]Row, 0, len(w.Rows))
	for i, r := range w.Rows {
		if r == nil || r.SerialNumber == nil {
			return nil, &MalformedPayloadError{Key: key, Reason: fmt.Sprintf("row %d has no ITEM_SERIAL_NUMBER", i)}
		}
		rows = append(rows, Row{SerialNumber: *r.SerialNumber, SalesOrder: r.SalesOrder})
	}
	return &Document{RecordCount: *count, Rows: rows}, nil
}
