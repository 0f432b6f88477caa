package analytics

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const salesSheet = "Sales"

var salesHeader = []string{"Period Start", "Orders", "Revenue"}

// SalesWorkbook renders sales buckets as an xlsx file.
func SalesWorkbook(period models.Period, buckets []models.SalesBucket) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(salesSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, h := range salesHeader {
		if err := setCell(f, col+1, 1, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetCellStyle(salesSheet, "A1", "C1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("set header style: %w", err)
	}
	if err := f.SetColWidth(salesSheet, "A", "C", 18); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}

	layout := "2006-01-02"
	if period == models.PeriodMonthly {
		layout = "2006-01"
	}
	for i, b := range buckets {
		row := i + 2
		revenue, _ := b.Revenue.Round(2).Float64()
		values := []any{b.Start.UTC().Format(layout), b.Orders, revenue}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(salesSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
