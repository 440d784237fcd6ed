package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"medimart/m/domain"
)

// exportSales writes the sales listing as an XLSX workbook, one row per
// sold item plus a totals row.
func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	report, err := h.ledger.ListSales(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sales"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Customer", "Shop", "City", "Type", "Batch", "Total", "Paid", "Remaining", "Cleared"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, sale := range report.SoldItems {
		row := i + 2
		values := []any{
			sale.CreatedAt,
			sale.CustomerName,
			sale.ShopName,
			sale.City,
			sale.Type,
			sale.BatchNo,
			sale.Total.InexactFloat64(),
			sale.Paid.InexactFloat64(),
			sale.Remaining.InexactFloat64(),
			sale.DebtCleared,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	totalsRow := len(report.SoldItems) + 2
	f.SetCellValue(sheet, fmt.Sprintf("F%d", totalsRow), "Totals")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", totalsRow), report.Totals.Total.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("H%d", totalsRow), report.Totals.Collected.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("I%d", totalsRow), report.Totals.Outstanding.InexactFloat64())

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.Printf("unable to stream sales export: %v", err)
	}
}
