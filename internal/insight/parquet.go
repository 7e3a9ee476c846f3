package insight

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/EMC-Underground/munger3/internal/blobstore"
)

// MappingRow is one SN/SO pair in the Parquet export.
type MappingRow struct {
	GDUN          string `parquet:"name=gdun, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SerialNumber  string `parquet:"name=serial_number, type=BYTE_ARRAY, convertedtype=UTF8"`
	SalesOrder    string `parquet:"name=sales_order, type=BYTE_ARRAY, convertedtype=UTF8"`
	MungerVersion string `parquet:"name=munger_version, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// ParquetExporter writes a columnar copy of each customer's SN/SO mapping,
// partitioned by gdun, under prefix in the insights store.
type ParquetExporter struct {
	store   blobstore.Putter
	prefix  string
	version string
}

func NewParquetExporter(store blobstore.Putter, prefix, mungerVersion string) *ParquetExporter {
	return &ParquetExporter{store: store, prefix: ensureTrailingSlash(prefix), version: mungerVersion}
}

// Key returns the export key for customerID, e.g. snso/gdun=100/snso.3.parquet.
func (e *ParquetExporter) Key(customerID string) string {
	return fmt.Sprintf("%sgdun=%s/snso.%s.parquet", e.prefix, customerID, e.version)
}

// Export writes mapping for customerID. Empty mappings are skipped and return "".
func (e *ParquetExporter) Export(ctx context.Context, customerID string, mapping []Mapping) (string, error) {
	if len(mapping) == 0 {
		return "", nil
	}
	rows := make([]MappingRow, 0, len(mapping))
	for _, m := range mapping {
		rows = append(rows, MappingRow{
			GDUN:          customerID,
			SerialNumber:  m.SN,
			SalesOrder:    m.SO,
			MungerVersion: e.version,
		})
	}

	data, err := encodeParquet(rows)
	if err != nil {
		return "", err
	}

	key := e.Key(customerID)
	if _, err := e.store.Put(ctx, key, data, "application/octet-stream"); err != nil {
		return key, &StoreError{Key: key, Err: err}
	}
	return key, nil
}

func encodeParquet(rows []MappingRow) ([]byte, error) {
	localPath := filepath.Join(os.TempDir(), "snso_"+randHex(8)+".parquet")
	defer func() { _ = os.Remove(localPath) }()

	fw, err := local.NewLocalFileWriter(localPath)
	if err != nil {
		return nil, fmt.Errorf("parquet file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(MappingRow), 1)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.PageSize = 8 * 1024
	pw.CompressionType = 0 // uncompressed

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return nil, fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet write stop: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("parquet close: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read parquet tmp: %w", err)
	}
	return data, nil
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
