package insight

import (
	"os"
	"slices"
	"strings"
)

// MasterList is the ordered set of distinct serial numbers collected across
// a whole worklist. It is owned by a single run and not safe for concurrent use.
type MasterList struct {
	serials []string
}

// Add appends each candidate not already present and returns how many were added.
func (m *MasterList) Add(candidates []string) int {
	added := 0
	for _, sn := range candidates {
		if slices.Contains(m.serials, sn) {
			continue
		}
		m.serials = append(m.serials, sn)
		added++
	}
	return added
}

// Len is the number of distinct serial numbers.
func (m *MasterList) Len() int { return len(m.serials) }

// Serials returns a copy of the list in first-seen order.
func (m *MasterList) Serials() []string {
	return append([]string(nil), m.serials...)
}

// Text renders the list one serial number per line.
func (m *MasterList) Text() string {
	if len(m.serials) == 0 {
		return ""
	}
	return strings.Join(m.serials, "\n") + "\n"
}

// WriteMasterList overwrites path with the list's text form.
func WriteMasterList(path string, m *MasterList) error {
	return os.WriteFile(path, []byte(m.Text()), 0o644)
}
