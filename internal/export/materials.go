// Package export produces the outputs of a layout: the bill of materials
// and a PNG plan.
package export

import (
	"fmt"
	"strings"

	"github.com/festmap/festmap/backend-go/internal/document"
)

// MaterialCount is one line of the bill of materials.
type MaterialCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountMaterials counts the entries of every list, in first-seen order.
func CountMaterials(lists [][]string) []MaterialCount {
	out := []MaterialCount{}
	index := make(map[string]int)
	for _, list := range lists {
		for _, name := range list {
			i, ok := index[name]
			if !ok {
				i = len(out)
				index[name] = i
				out = append(out, MaterialCount{Name: name})
			}
			out[i].Count++
		}
	}
	return out
}

// FormatMaterials renders counts as "<count>x <name>" lines.
func FormatMaterials(counts []MaterialCount) string {
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "%dx %s\n", c.Count, c.Name)
	}
	return b.String()
}

// RecordMaterials returns the bill-of-materials entries of a serialized
// item: its material list, or its name when that list is empty.
func RecordMaterials(rec document.Record) []string {
	if len(rec.Material) == 0 {
		return []string{rec.Name}
	}
	return rec.Material
}

// MaterialList formats the bill of materials of serialized items.
func MaterialList(records []document.Record) string {
	lists := make([][]string, len(records))
	for i, rec := range records {
		lists[i] = RecordMaterials(rec)
	}
	return FormatMaterials(CountMaterials(lists))
}
