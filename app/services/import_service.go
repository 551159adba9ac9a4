package services

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// RowError describes a CSV row that was not imported. Row is 1-based and
// excludes the header.
type RowError struct {
	Row    int
	Reason string
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Added  []int64
	Failed []RowError
}

// ImportService bulk-loads products from CSV through the catalog, so
// imported products get ids and timestamps exactly as added ones do.
type ImportService struct {
	catalog *CatalogService
}

func NewImportService(catalog *CatalogService) *ImportService {
	return &ImportService{catalog: catalog}
}

// Import reads a CSV with the header name,image,category,new_price,old_price.
// Invalid rows are reported and skipped; a storage error stops the import.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	var rows []*models.NewProduct
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("import: parse csv: %w", err)
	}

	report := &ImportReport{}
	for i, row := range rows {
		if errs := validate.Struct(row); validate.HasErrors(errs) {
			report.Failed = append(report.Failed, RowError{Row: i + 1, Reason: fmt.Sprint(errs)})
			logger.WithCtx(ctx).Warn("import row rejected", "row", i+1, "errors", errs)
			continue
		}

		p, err := s.catalog.AddProduct(ctx, *row)
		if err != nil {
			return report, fmt.Errorf("import: row %d: %w", i+1, err)
		}
		report.Added = append(report.Added, p.ID)
	}
	return report, nil
}
