// internal/services/export_service.go
package services

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/balaguruva/admin-backend/internal/repository"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productExportHeaders = []string{
	"ID", "Name", "Description", "Category", "MRP", "Discount",
	"DiscountedPrice", "Stock", "CreatedAt", "UpdatedAt",
}

type ExportService struct {
	products *ProductService
}

func NewExportService(products *ProductService) *ExportService {
	return &ExportService{products: products}
}

// WriteProductsWorkbook writes the live catalog, ordered by product number,
// as a single sheet workbook.
func (s *ExportService) WriteProductsWorkbook(ctx context.Context, w io.Writer) error {
	products, _, err := s.products.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	// Header row
	headerRow := sheet.AddRow()
	for _, h := range productExportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	// Data rows
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.Number)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetFloat(p.Mrp)
		row.AddCell().SetFloat(p.Discount)
		row.AddCell().SetFloat(p.DiscountedPrice)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
