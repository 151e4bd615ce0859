package service

import (
	"context"
	"fmt"
	"time"

	"inventrack/internal/dto"
	"inventrack/internal/repository"
)

type ReportService interface {
	SalesSummary(ctx context.Context, r dto.ReportRange) (*dto.SalesSummaryResponse, error)
	TopProducts(ctx context.Context, r dto.ReportRange) ([]dto.TopProductResponse, error)
}

type reportService struct {
	repo repository.ReportRepository
	now  func() time.Time
}

func NewReportService(repo repository.ReportRepository) ReportService {
	return &reportService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// bounds resolves the [from, to) window. No bounds means today; only from means
// from through today; only to means that single day.
func (s *reportService) bounds(r dto.ReportRange) (time.Time, time.Time, error) {
	from, to, err := parseDateRange(r.From, r.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	tomorrow := s.now().Truncate(24*time.Hour).AddDate(0, 0, 1)
	switch {
	case from == nil && to == nil:
		return tomorrow.AddDate(0, 0, -1), tomorrow, nil
	case from == nil:
		return to.AddDate(0, 0, -1), *to, nil
	case to == nil:
		if !from.Before(tomorrow) {
			return *from, from.AddDate(0, 0, 1), nil
		}
		return *from, tomorrow, nil
	}
	return *from, *to, nil
}

func (s *reportService) SalesSummary(ctx context.Context, r dto.ReportRange) (*dto.SalesSummaryResponse, error) {
	from, to, err := s.bounds(r)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	return &dto.SalesSummaryResponse{
		From:      from.Format(dateLayout),
		To:        to.AddDate(0, 0, -1).Format(dateLayout),
		SaleCount: t.SaleCount,
		Subtotal:  round2(t.Subtotal),
		Discount:  round2(t.Discount),
		Tax:       round2(t.Tax),
		Total:     round2(t.Total),
		Paid:      round2(t.Paid),
	}, nil
}

func (s *reportService) TopProducts(ctx context.Context, r dto.ReportRange) ([]dto.TopProductResponse, error) {
	from, to, err := s.bounds(r)
	if err != nil {
		return nil, err
	}
	_, limit := normalizePage(1, r.Limit, 10, 100)
	rows, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	out := make([]dto.TopProductResponse, len(rows))
	for i, row := range rows {
		out[i] = dto.TopProductResponse{
			ProductID: row.ProductID.String(),
			SKU:       row.SKU,
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   round2(row.Revenue),
		}
	}
	return out, nil
}
