// Package installbase reads the customer worklist and the per-customer
// install base documents from the install base object store.
package installbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/EMC-Underground/munger3/internal/blobstore"
)

// WorklistLoader reads the list of customer GDUNs.
type WorklistLoader struct {
	store blobstore.Getter
}

func NewWorklistLoader(store blobstore.Getter) *WorklistLoader {
	return &WorklistLoader{store: store}
}

// Load returns the GDUNs in document order. Duplicates are kept.
func (l *WorklistLoader) Load(ctx context.Context, key string) ([]string, error) {
	body, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, &FetchError{Key: key, Err: err}
	}
	return ParseWorklist(key, body)
}

// ParseWorklist decodes a JSON array of objects each holding a gduns field.
// String and numeric gduns are both accepted; integral numbers are rendered
// in plain decimal.
func ParseWorklist(key string, body []byte) ([]string, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FormatError{Key: key, Reason: "expected a JSON array of objects", Err: err}
	}
	if entries == nil {
		return nil, &FormatError{Key: key, Reason: "expected a JSON array of objects"}
	}

	gduns := make([]string, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry["gduns"]
		if !ok {
			return nil, &FormatError{Key: key, Reason: fmt.Sprintf("entry %d has no gduns field", i)}
		}
		id, err := gdunText(raw)
		if err != nil {
			return nil, &FormatError{Key: key, Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
		gduns = append(gduns, id)
	}
	return gduns, nil
}

func gdunText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("empty gduns")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return "", fmt.Errorf("gduns must be a string or number, got %s", string(raw))
	}
	return numberText(n), nil
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// numberText renders integral numbers in plain decimal, so 100, 100.0 and 1e2
// all name 100.json. Other numbers keep their literal text.
func numberText(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}
