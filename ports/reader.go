package ports

import (
	"context"
	"io"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
)

// DatasetReader parses one uploaded tabular file into raw records. Format
// detection (delimiter, spreadsheet vs text) happens here; header binding is
// the normalizer's job because it needs the domain descriptor.
type DatasetReader interface {
	Read(ctx context.Context, r io.Reader, filename string) (*inference.TabularDataset, error)
}
