// Package export renders the bill ledger as spreadsheet downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

const SheetName = "Bills"

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var Header = []string{"Bill No", "Date", "Customer", "Phone", "Payment Mode", "Items", "Subtotal", "Discount", "Total"}

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) Filename() string {
	return "bills." + string(f)
}

// Write renders records in the requested format.
func Write(w io.Writer, format Format, records []domain.BillRecord) error {
	if format == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteXLSX(w, records)
}

// ItemsSummary joins line items as "name xqty" for a single spreadsheet cell.
func ItemsSummary(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" x"+strconv.Itoa(item.Quantity))
	}
	return strings.Join(parts, "; ")
}

func WriteXLSX(w io.Writer, records []domain.BillRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, title := range Header {
		header[i] = title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		subtotal, _ := record.Subtotal.Float64()
		discount, _ := record.Discount.Float64()
		total, _ := record.Total.Float64()
		row := []interface{}{
			record.BillNumber,
			record.Date,
			record.CustomerName,
			record.CustomerPhone,
			string(record.PaymentMode),
			ItemsSummary(record.LineItems),
			subtotal,
			discount,
			total,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "E", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "F", "F", 48); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func WriteCSV(w io.Writer, records []domain.BillRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, record := range records {
		if err := cw.Write([]string{
			record.BillNumber,
			record.Date,
			record.CustomerName,
			record.CustomerPhone,
			string(record.PaymentMode),
			ItemsSummary(record.LineItems),
			record.Subtotal.StringFixed(2),
			record.Discount.StringFixed(2),
			record.Total.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
