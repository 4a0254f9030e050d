// Package normalize rewrites arbitrary, drifting input schemas onto the exact
// canonical column set a domain's feature contract expects. Every gap except a
// structurally absent identifier column degrades gracefully to the column's
// declared default; missing data must never abort a batch.
package normalize

import (
	"fmt"
	"log"
	"strings"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
)

// Normalizer maps raw tabular rows onto canonical rows for one request.
// Stateless and safe for concurrent use.
type Normalizer struct{}

// New creates a normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// NormalizeDataset binds the dataset's columns against the descriptor and
// normalizes every row. It fails only when the identifier column is
// structurally absent; row-level gaps are healed with defaults.
func (n *Normalizer) NormalizeDataset(d inference.Descriptor, ds *inference.TabularDataset) ([]inference.CanonicalRow, error) {
	if ds == nil || len(ds.Records) == 0 {
		return nil, core.ErrEmptyDataset
	}

	headers, records := n.bindColumns(d, ds.Records)
	log.Printf("[Normalizer] Bound %d columns for domain %s (%d data rows)", len(headers), d.Name, len(records))

	if !contains(headers, d.IdentifierColumn) {
		return nil, core.NewMissingIdentifierError(d.IdentifierColumn)
	}

	rows := make([]inference.CanonicalRow, 0, len(records))
	for i, record := range records {
		raw := make(inference.RawRow, len(headers))
		for j, header := range headers {
			if j < len(record) {
				raw[header] = record[j]
			}
		}
		rows = append(rows, n.NormalizeRow(d, raw, i))
	}
	return rows, nil
}

// NormalizeRow rewrites one raw row onto the canonical schema. Numeric cells
// that fail coercion become the column default, categorical blanks become the
// declared label default, unparsable times become the zero time. A blank
// identifier cell gets a positional surrogate so the row is kept.
func (n *Normalizer) NormalizeRow(d inference.Descriptor, raw inference.RawRow, index int) inference.CanonicalRow {
	identity := strings.TrimSpace(raw[d.IdentifierColumn])
	if identity == "" {
		identity = fmt.Sprintf("row_%d", index)
	}
	row := inference.NewCanonicalRow(core.EntityID(identity))

	for column, fallback := range d.NumericDefaults {
		cell, present := raw[column]
		if !present {
			row.Numbers[column] = fallback
			row.MarkFilled(column)
			continue
		}
		if val, ok := coerceNumeric(cell); ok {
			row.Numbers[column] = val
		} else {
			row.Numbers[column] = fallback
			row.MarkFilled(column)
		}
	}

	for column, fallback := range d.LabelDefaults {
		cell := strings.TrimSpace(raw[column])
		if cell == "" {
			row.Labels[column] = fallback
			row.MarkFilled(column)
		} else {
			row.Labels[column] = cell
		}
	}

	for _, column := range d.TimeColumns {
		if t, ok := coerceTime(raw[column]); ok {
			row.Times[column] = t
		} else {
			// Zero time: derived calendar features degrade instead of failing.
			row.MarkFilled(column)
		}
	}

	return row
}

// bindColumns decides whether the first record is a header row and returns
// canonical headers plus the data records. Headerless files bind against the
// domain's fixed column order.
func (n *Normalizer) bindColumns(d inference.Descriptor, records [][]string) ([]string, [][]string) {
	first := records[0]

	if n.looksLikeHeader(d, first) {
		headers := make([]string, len(first))
		for i, cell := range first {
			headers[i] = n.canonicalName(d, cell)
		}
		return headers, records[1:]
	}

	if d.HeaderlessColumns != nil {
		return d.HeaderlessColumns(len(first)), records
	}

	// No recognizable header and no fixed order declared: treat the first row
	// as a header so the identifier check produces a precise error.
	headers := make([]string, len(first))
	for i, cell := range first {
		headers[i] = n.canonicalName(d, cell)
	}
	return headers, records[1:]
}

// looksLikeHeader reports whether a record reads as column names for this
// domain: any cell resolving to a known canonical column wins; a fully
// numeric record is data.
func (n *Normalizer) looksLikeHeader(d inference.Descriptor, record []string) bool {
	known := n.knownColumns(d)
	allNumeric := true
	for _, cell := range record {
		if known[n.canonicalName(d, cell)] {
			return true
		}
		if _, ok := coerceNumeric(cell); !ok {
			allNumeric = false
		}
	}
	return !allNumeric && d.HeaderlessColumns == nil
}

// canonicalName resolves a source header through the rename map, falling back
// to snake_case folding so "Units Sold" and "units_sold" bind identically.
func (n *Normalizer) canonicalName(d inference.Descriptor, header string) string {
	trimmed := strings.TrimSpace(header)
	if canonical, ok := d.RenameMap[trimmed]; ok {
		return canonical
	}
	folded := strings.ToLower(trimmed)
	folded = strings.ReplaceAll(folded, " ", "_")
	folded = strings.ReplaceAll(folded, "-", "_")
	if canonical, ok := d.RenameMap[folded]; ok {
		return canonical
	}
	return folded
}

func (n *Normalizer) knownColumns(d inference.Descriptor) map[string]bool {
	known := map[string]bool{d.IdentifierColumn: true}
	if d.CycleColumn != "" {
		known[d.CycleColumn] = true
	}
	for column := range d.NumericDefaults {
		known[column] = true
	}
	for column := range d.LabelDefaults {
		known[column] = true
	}
	for _, column := range d.TimeColumns {
		known[column] = true
	}
	for _, column := range d.DropColumns {
		known[column] = true
	}
	return known
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
