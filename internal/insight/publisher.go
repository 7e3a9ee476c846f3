package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EMC-Underground/munger3/internal/blobstore"
)

// ContentType is the type insight objects are tagged with. The skill does
// not look at it.
const ContentType = "json"

// StoreError reports a failed insight write.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store insight %s: %v", e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Key is the lookup key the skill builds for a customer, e.g. 100.SNSO.3.
func Key(customerID, tag, mungerVersion string) string {
	return customerID + "." + tag + "." + mungerVersion
}

// Publisher writes per-customer SN/SO insights to the insights store.
type Publisher struct {
	store   blobstore.Putter
	tag     string
	version string
}

func NewPublisher(store blobstore.Putter, tag, mungerVersion string) *Publisher {
	return &Publisher{store: store, tag: tag, version: mungerVersion}
}

// Key returns the key Publish would write for customerID.
func (p *Publisher) Key(customerID string) string {
	return Key(customerID, p.tag, p.version)
}

// Publish stores mapping as a JSON array and returns the key and ETag.
func (p *Publisher) Publish(ctx context.Context, customerID string, mapping []Mapping) (string, string, error) {
	key := p.Key(customerID)
	if mapping == nil {
		mapping = []Mapping{}
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return key, "", &StoreError{Key: key, Err: fmt.Errorf("marshal: %w", err)}
	}
	etag, err := p.store.Put(ctx, key, body, ContentType)
	if err != nil {
		return key, "", &StoreError{Key: key, Err: err}
	}
	return key, etag, nil
}
