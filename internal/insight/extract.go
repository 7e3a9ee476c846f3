// Package insight derives queryable insights from install base documents and
// publishes them for the downstream Alexa skill.
package insight

import "github.com/EMC-Underground/munger3/internal/installbase"

// Mapping pairs a product serial number with its sales order.
type Mapping struct {
	SN string `json:"SN"`
	SO string `json:"SO"`
}

// SerialNumbers returns every row's serial number in row order. Duplicates are
// kept; MasterList.Add removes them.
func SerialNumbers(doc *installbase.Document) []string {
	sns := make([]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		sns = append(sns, r.SerialNumber)
	}
	return sns
}

// SerialToOrder returns one SN/SO pair per row in row order.
func SerialToOrder(doc *installbase.Document) []Mapping {
	out := make([]Mapping, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		out = append(out, Mapping{SN: r.SerialNumber, SO: r.SalesOrder})
	}
	return out
}
