package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"order-analytics/internal/analytics"
	"order-analytics/internal/models"
	"order-analytics/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RowSource fetches raw rows from storage. Satisfied by *store.Store.
type RowSource interface {
	GetOrderRows(ctx context.Context, org string) ([]models.RawOrderRow, error)
	GetDeliveryRows(ctx context.Context, org string) ([]models.RawDeliveryRow, error)
}

// RowCache caches raw rows per organization. Satisfied by
// *redisclient.Client. May be nil; the service then always hits storage.
type RowCache interface {
	GetRows(ctx context.Context, org string) ([]models.RawOrderRow, []models.RawDeliveryRow, bool, error)
	SetRows(ctx context.Context, org string, orders []models.RawOrderRow, deliveries []models.RawDeliveryRow) error
}

// ReportPublisher publishes report lifecycle events. May be nil.
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error
}

// AnalyticsService orchestrates a report request: fetch rows, run the
// engine, emit metrics and events. The engine itself stays pure; all
// I/O lives here.
type AnalyticsService struct {
	rows      RowSource
	cache     RowCache
	publisher ReportPublisher
	defaults  analytics.Config
	logger    *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(rows RowSource, cache RowCache, publisher ReportPublisher, defaults analytics.Config) *AnalyticsService {
	return &AnalyticsService{
		rows:      rows,
		cache:     cache,
		publisher: publisher,
		defaults:  defaults,
		logger:    util.GetLogger(),
	}
}

// BuildReport fetches the organization's raw rows and runs the full
// analytics pipeline over the window. Overrides, when non-nil, replace
// the corresponding service defaults for this call only.
func (s *AnalyticsService) BuildReport(ctx context.Context, org string, window analytics.Window, overrides *analytics.Config) (*analytics.Report, error) {
	ctx, span := util.StartSpan(ctx, "AnalyticsService.BuildReport")
	defer span.End()

	start := time.Now()

	orders, deliveries, err := s.fetchRows(ctx, org)
	if err != nil {
		util.ReportsFailedTotal.WithLabelValues("fetch_error").Inc()
		return nil, fmt.Errorf("failed to fetch rows for org %s: %w", org, err)
	}

	if err := ctx.Err(); err != nil {
		util.ReportsFailedTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	report, err := analytics.Run(analytics.Input{
		Org:        org,
		Window:     window,
		Orders:     orders,
		Deliveries: deliveries,
		Config:     s.mergeConfig(overrides),
	})
	if err != nil {
		util.ReportsFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	duration := time.Since(start)
	util.ReportDuration.Observe(duration.Seconds())
	util.ReportsGeneratedTotal.Inc()
	s.recordDiagnostics(report)

	s.logger.Info("Report built",
		zap.String("org", org),
		zap.Int("orders", report.OrderCount),
		zap.Int("skipped_rows", report.SkippedRows),
		zap.Duration("duration", duration))

	if s.publisher != nil {
		event := &models.ReportGeneratedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeReportGenerated,
				Timestamp: time.Now(),
			},
			ReportID:    uuid.New().String(),
			Org:         org,
			WindowStart: window.Start,
			WindowEnd:   window.End,
			OrderCount:  report.OrderCount,
			SkippedRows: report.SkippedRows,
			DurationMS:  duration.Milliseconds(),
		}
		if err := s.publisher.PublishReportGenerated(ctx, event); err != nil {
			s.logger.Error("Failed to publish ReportGenerated event", zap.Error(err))
		}
	}

	return report, nil
}

// fetchRows serves raw rows from the cache when possible, storage
// otherwise. Only raw rows are ever cached; derived results are not.
func (s *AnalyticsService) fetchRows(ctx context.Context, org string) ([]models.RawOrderRow, []models.RawDeliveryRow, error) {
	if s.cache != nil {
		orders, deliveries, ok, err := s.cache.GetRows(ctx, org)
		if err != nil {
			s.logger.Warn("Row cache read failed, falling back to storage", zap.Error(err))
		} else if ok {
			util.RowCacheHitsTotal.Inc()
			return orders, deliveries, nil
		}
		util.RowCacheMissesTotal.Inc()
	}

	fetchStart := time.Now()
	orders, err := s.rows.GetOrderRows(ctx, org)
	if err != nil {
		return nil, nil, err
	}
	deliveries, err := s.rows.GetDeliveryRows(ctx, org)
	if err != nil {
		return nil, nil, err
	}
	util.RowFetchDuration.Observe(time.Since(fetchStart).Seconds())

	if s.cache != nil {
		if err := s.cache.SetRows(ctx, org, orders, deliveries); err != nil {
			s.logger.Warn("Row cache write failed", zap.Error(err))
		}
	}
	return orders, deliveries, nil
}

// mergeConfig overlays per-request overrides on the service defaults.
func (s *AnalyticsService) mergeConfig(overrides *analytics.Config) analytics.Config {
	cfg := s.defaults
	if overrides == nil {
		return cfg
	}
	if overrides.TopN > 0 {
		cfg.TopN = overrides.TopN
	}
	if overrides.ForecastHorizonMonths > 0 {
		cfg.ForecastHorizonMonths = overrides.ForecastHorizonMonths
	}
	if overrides.ConfidenceLevel > 0 && overrides.ConfidenceLevel < 1 {
		cfg.ConfidenceLevel = overrides.ConfidenceLevel
	}
	if overrides.RetentionHorizonMonths > 0 {
		cfg.RetentionHorizonMonths = overrides.RetentionHorizonMonths
	}
	if len(overrides.SegmentTable) > 0 {
		cfg.SegmentTable = overrides.SegmentTable
	}
	return cfg
}

func (s *AnalyticsService) recordDiagnostics(report *analytics.Report) {
	for _, d := range report.Diagnostics {
		switch d.Kind {
		case analytics.DiagMalformedRecord, analytics.DiagInvalidValue, analytics.DiagOverDeliveryViolation:
			util.RowsSkippedTotal.WithLabelValues(d.Kind).Inc()
		case analytics.DiagInsufficientHistory:
			// Detail begins with the series name ("revenue" or "quantity").
			series, _, _ := strings.Cut(d.Detail, " ")
			util.ForecastsSkippedTotal.WithLabelValues(series).Inc()
		}
	}
}
