package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
)

const maxReportRangeDays = 366

// OverviewDTO is the admin dashboard's headline block.
type OverviewDTO struct {
	TotalOrders    int64                       `json:"totalOrders"`
	TotalRevenue   decimal.Decimal             `json:"totalRevenue"`
	TotalCustomers int64                       `json:"totalCustomers"`
	TotalProducts  int64                       `json:"totalProducts"`
	OrdersByStatus map[enums.OrderStatus]int64 `json:"ordersByStatus"`
}

// DailySalesDTO is one row of the sales report.
type DailySalesDTO struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReportDTO is the per-day report with range totals.
type SalesReportDTO struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	Days         []DailySalesDTO `json:"days"`
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// Service computes admin analytics.
type Service interface {
	Overview(ctx context.Context) (*OverviewDTO, error)
	SalesReport(ctx context.Context, from, to time.Time) (*SalesReportDTO, error)
	ExportSalesReport(ctx context.Context, from, to time.Time) ([]byte, error)
}

type reportsRepository interface {
	Totals(ctx context.Context) (*Totals, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	SalesBetween(ctx context.Context, from, to time.Time) ([]DailySales, error)
}

// ServiceParams groups dependencies for the reports service.
type ServiceParams struct {
	Repo reportsRepository
}

type service struct {
	repo reportsRepository
}

// NewService builds a reports service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reports repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Overview(ctx context.Context) (*OverviewDTO, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute totals")
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders by status")
	}

	return &OverviewDTO{
		TotalOrders:    totals.Orders,
		TotalRevenue:   totals.Revenue,
		TotalCustomers: totals.Customers,
		TotalProducts:  totals.Products,
		OrdersByStatus: byStatus,
	}, nil
}

func (s *service) SalesReport(ctx context.Context, from, to time.Time) (*SalesReportDTO, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate sales")
	}

	report := &SalesReportDTO{
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
		Days:         make([]DailySalesDTO, 0, len(rows)),
		TotalRevenue: decimal.Zero,
	}
	for _, row := range rows {
		report.Days = append(report.Days, DailySalesDTO{
			Date:    row.Day,
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
		report.TotalOrders += row.Orders
		report.TotalRevenue = report.TotalRevenue.Add(row.Revenue)
	}
	return report, nil
}

// ExportSalesReport renders the report as an XLSX workbook.
func (s *service) ExportSalesReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.SalesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer book.Close()

	const sheet = "Sales Report"
	index, err := book.NewSheet(sheet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sheet")
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
	}

	headers := []any{"Date", "Orders", "Revenue (BDT)"}
	if err := book.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header row")
	}
	for i, day := range report.Days {
		revenue, _ := day.Revenue.Float64()
		row := []any{day.Date, day.Orders, revenue}
		cell := fmt.Sprintf("A%d", i+2)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write report row")
		}
	}

	totalRevenue, _ := report.TotalRevenue.Float64()
	totalRow := []any{"Total", report.TotalOrders, totalRevenue}
	cell := fmt.Sprintf("A%d", len(report.Days)+2)
	if err := book.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write total row")
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize workbook")
	}
	return buf.Bytes(), nil
}

func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		// Default to the trailing 30 days.
		now := time.Now().UTC()
		to = now
		from = now.AddDate(0, 0, -30)
	}
	from = from.Truncate(24 * time.Hour)
	to = to.Truncate(24 * time.Hour)

	if to.Before(from) {
		return from, to, pkgerrors.New(pkgerrors.CodeValidation, "report range end precedes start")
	}
	if to.Sub(from) > maxReportRangeDays*24*time.Hour {
		return from, to, pkgerrors.New(pkgerrors.CodeValidation, "report range exceeds one year")
	}
	return from, to, nil
}
