package installbase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/EMC-Underground/munger3/internal/blobstore"

	"github.com/google/go-cmp/cmp"
)

// doubleEncode mirrors how the upstream producer stores documents.
func doubleEncode(t *testing.T, v any) []byte {
	t.Helper()
	inner, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := json.Marshal(string(inner))
	if err != nil {
		t.Fatal(err)
	}
	return outer
}

func TestWorklistLoader_Load(t *testing.T) {
	store := blobstore.NewMemory("installBase")
	store.Seed("list.json", []byte(`[{"gduns":"100"},{"gduns":200,"name":"Expedia"},{"gduns":"100"}]`))

	got, err := NewWorklistLoader(store).Load(context.Background(), "list.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"100", "200", "100"}, got); diff != "" {
		t.Fatalf("gduns (-want +got):\n%s", diff)
	}
}

func TestWorklistLoader_FetchError(t *testing.T) {
	store := blobstore.NewMemory("installBase")

	_, err := NewWorklistLoader(store).Load(context.Background(), "list.json")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Key != "list.json" {
		t.Fatalf("err = %v", err)
	}
	var nf *blobstore.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("store error not wrapped: %v", err)
	}
}

func TestParseWorklist_FormatErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `nope`,
		"object":          `{"gduns":"100"}`,
		"null":            `null`,
		"scalar element":  `[1]`,
		"missing field":   `[{"gdun":"100"}]`,
		"null gduns":      `[{"gduns":null}]`,
		"bool gduns":      `[{"gduns":true}]`,
		"empty string id": `[{"gduns":"  "}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWorklist("list.json", []byte(body))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %T %v, want *FormatError", err, err)
			}
		})
	}
}

func TestParseWorklist_NumericGDUNs(t *testing.T) {
	body := []byte(`[{"gduns":100},{"gduns":100.0},{"gduns":1e2},{"gduns":-7},{"gduns":12.5},{"gduns":9007199254740993},{"gduns":"0100"}]`)
	got, err := ParseWorklist("list.json", body)
	if err != nil {
		t.Fatalf("ParseWorklist: %v", err)
	}
	want := []string{"100", "100", "100", "-7", "12.5", "9007199254740993", "0100"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("gduns (-want +got):\n%s", diff)
	}
}

func TestParseWorklist_Empty(t *testing.T) {
	got, err := ParseWorklist("list.json", []byte(`[]`))
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestDecodeDocument_RoundTrip(t *testing.T) {
	doc := Document{
		RecordCount: 2,
		Rows: []Row{
			{SerialNumber: "A1", SalesOrder: "SO1"},
			{SerialNumber: "A1", SalesOrder: "SO2"},
		},
	}

	got, err := DecodeDocument("100.json", doubleEncode(t, doc))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if diff := cmp.Diff(doc, *got); diff != "" {
		t.Fatalf("document (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument_LegacyRecordsField(t *testing.T) {
	body := doubleEncode(t, map[string]any{
		"records": 1,
		"rows":    []map[string]string{{"ITEM_SERIAL_NUMBER": "CK200", "SALES_ORDER": "77"}},
	})
	got, err := DecodeDocument("100.json", body)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if got.RecordCount != 1 || got.Rows[0].SerialNumber != "CK200" {
		t.Fatalf("doc = %+v", got)
	}
}

func TestDecodeDocument_Empty(t *testing.T) {
	for _, n := range []int{0, -1} {
		body := doubleEncode(t, map[string]any{"recordCount": n, "rows": []any{}})
		_, err := DecodeDocument("100.json", body)
		var ee *EmptyPayloadError
		if !errors.As(err, &ee) || ee.Key != "100.json" || ee.RecordCount != n {
			t.Fatalf("recordCount=%d: err = %v", n, err)
		}
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"single encoded":     []byte(`{"recordCount":1,"rows":[]}`),
		"outer not json":     []byte(`garbage`),
		"inner not json":     []byte(`"garbage"`),
		"inner array":        doubleEncodeRaw(`[1,2]`),
		"missing count":      doubleEncodeRaw(`{"rows":[]}`),
		"missing rows":       doubleEncodeRaw(`{"recordCount":3}`),
		"rows not array":     doubleEncodeRaw(`{"recordCount":1,"rows":{}}`),
		"numeric serial":     doubleEncodeRaw(`{"recordCount":1,"rows":[{"ITEM_SERIAL_NUMBER":12}]}`),
		"string recordCount": doubleEncodeRaw(`{"recordCount":"2","rows":[]}`),
		"empty row":          doubleEncodeRaw(`{"recordCount":1,"rows":[{}]}`),
		"null row":           doubleEncodeRaw(`{"recordCount":1,"rows":[null]}`),
		"null serial":        doubleEncodeRaw(`{"recordCount":1,"rows":[{"ITEM_SERIAL_NUMBER":null,"SALES_ORDER":"SO1"}]}`),
		"second row bad":     doubleEncodeRaw(`{"recordCount":2,"rows":[{"ITEM_SERIAL_NUMBER":"A1"},{"SALES_ORDER":"SO2"}]}`),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument("100.json", body)
			var me *MalformedPayloadError
			if !errors.As(err, &me) || me.Key != "100.json" {
				t.Fatalf("err = %T %v, want *MalformedPayloadError", err, err)
			}
		})
	}
}

func TestDecodeDocument_RowWithoutSerialNamesRow(t *testing.T) {
	body := doubleEncodeRaw(`{"recordCount":3,"rows":[{"ITEM_SERIAL_NUMBER":"A1"},{"ITEM_SERIAL_NUMBER":"B7"},{"SALES_ORDER":"SO3"}]}`)
	_, err := DecodeDocument("100.json", body)
	var me *MalformedPayloadError
	if !errors.As(err, &me) || me.Reason != "row 2 has no ITEM_SERIAL_NUMBER" {
		t.Fatalf("err = %v", err)
	}
}

func TestDecodeDocument_MissingSalesOrderAllowed(t *testing.T) {
	got, err := DecodeDocument("100.json", doubleEncodeRaw(`{"recordCount":1,"rows":[{"ITEM_SERIAL_NUMBER":"CK200"}]}`))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if diff := cmp.Diff([]Row{{SerialNumber: "CK200"}}, got.Rows); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func doubleEncodeRaw(inner string) []byte {
	b, _ := json.Marshal(inner)
	return b
}

func TestFetcher_Fetch(t *testing.T) {
	store := blobstore.NewMemory("installBase")
	store.Seed("100.json", doubleEncode(t, Document{RecordCount: 1, Rows: []Row{{SerialNumber: "A1", SalesOrder: "SO1"}}}))
	store.FailOn("300.json", errors.New("connection refused"))
	f := NewFetcher(store)

	doc, err := f.Fetch(context.Background(), "100")
	if err != nil || len(doc.Rows) != 1 {
		t.Fatalf("Fetch 100 = %+v, %v", doc, err)
	}

	for _, id := range []string{"200", "300"} {
		_, err := f.Fetch(context.Background(), id)
		var fe *FetchError
		if !errors.As(err, &fe) || fe.Key != id+".json" {
			t.Fatalf("Fetch %s: err = %v", id, err)
		}
	}

	if diff := cmp.Diff([]string{"100.json", "200.json", "300.json"}, store.Gets()); diff != "" {
		t.Fatalf("gets (-want +got):\n%s", diff)
	}
}
