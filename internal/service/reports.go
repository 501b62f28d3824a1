package service

import (
	"context"

	"aminashop/backend/internal/domain"
)

func (s *Service) SalesReport(ctx context.Context, query domain.SalesReportQuery) (domain.SalesReport, error) {
	if err := s.authorize(ctx, domain.ModuleReports); err != nil {
		return domain.SalesReport{}, err
	}
	doc, version := s.store.Snapshot()
	return s.reports.Sales(ctx, doc, version, query), nil
}
