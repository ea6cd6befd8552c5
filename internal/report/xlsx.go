package report

import (
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/xuri/excelize/v2"
)

const matrixSheetName = "Matrix"

var matrixHeaders = []string{
	"SKU", "SKU Name", "Warehouse", "Channel",
	"Stock at Anchor", "Inbound", "Outbound", "Stock Closing",
	"Std Stock", "Gap", "Move", "Stock Final",
}

// BuildMatrixWorkbook renders aggregated matrix rows as an xlsx workbook and
// returns the serialized bytes.
func BuildMatrixWorkbook(rows []domain.MatrixRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", matrixSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range matrixHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(matrixSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(matrixHeaders), 1)
	if err := f.SetCellStyle(matrixSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		skuName := ""
		if row.SKUName != nil {
			skuName = *row.SKUName
		}
		values := []interface{}{
			row.SKUCode,
			skuName,
			row.WarehouseName,
			row.Channel,
			row.StockAtAnchor.InexactFloat64(),
			row.InboundQty.InexactFloat64(),
			row.OutboundQty.InexactFloat64(),
			row.StockClosing.InexactFloat64(),
			row.StdStock.InexactFloat64(),
			row.Gap.InexactFloat64(),
			row.Move.InexactFloat64(),
			row.StockFin.InexactFloat64(),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(matrixSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
