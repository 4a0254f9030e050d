package tabular

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
)

func TestReadCSV(t *testing.T) {
	input := "Product ID,Units Sold,Price\nP1,30,19.99\n\nP2,12,5.00\n"
	ds, err := NewReader(0).Read(context.Background(), strings.NewReader(input), "inventory.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("got %d records, want 3 (blank line skipped)", len(ds.Records))
	}
	if ds.Records[1][0] != "P1" {
		t.Errorf("record 1 = %v", ds.Records[1])
	}
}

func TestReadCSVToleratesRaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\n4,5,6,7\n"
	ds, err := NewReader(0).Read(context.Background(), strings.NewReader(input), "ragged.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(ds.Records))
	}
}

func TestReadWhitespaceDelimited(t *testing.T) {
	input := "1 100 0.5 0.2 100.0 641.82\n1 101  0.5 0.2 100.0 642.15\n"
	ds, err := NewReader(0).Read(context.Background(), strings.NewReader(input), "train_FD001.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(ds.Records))
	}
	if len(ds.Records[1]) != 6 {
		t.Errorf("multiple spaces should collapse, got %d fields", len(ds.Records[1]))
	}
}

func TestReadExcel(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	_ = workbook.SetSheetRow(sheet, "A1", &[]any{"Vessel ID", "Speed (knots)"})
	_ = workbook.SetSheetRow(sheet, "A2", &[]any{"V-100", 12.5})

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatal(err)
	}

	ds, err := NewReader(0).Read(context.Background(), &buf, "vessels.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(ds.Records))
	}
	if ds.Records[1][0] != "V-100" {
		t.Errorf("record 1 = %v", ds.Records[1])
	}
}

func TestReadEmptyFile(t *testing.T) {
	_, err := NewReader(0).Read(context.Background(), strings.NewReader("\n\n"), "empty.csv")
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if !errors.Is(err, core.ErrUnreadableUpload) {
		t.Errorf("got %v", err)
	}
}

func TestReadRecordLimit(t *testing.T) {
	input := "a,b\n1,2\n3,4\n5,6\n"
	_, err := NewReader(2).Read(context.Background(), strings.NewReader(input), "big.csv")
	if !errors.Is(err, core.ErrUnreadableUpload) {
		t.Errorf("expected record limit error, got %v", err)
	}
}

func TestReadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewReader(0).Read(ctx, strings.NewReader("a,b\n1,2\n"), "x.csv"); err == nil {
		t.Error("expected context error")
	}
}
