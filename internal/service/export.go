package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/flatten"
	"github.com/campusshop/storefront/internal/queue"
	"github.com/campusshop/storefront/internal/repo"
)

// SheetPublisher hands a full export table to the sheet worker.
// *queue.Publisher satisfies it.
type SheetPublisher interface {
	PublishSheetReplace(ctx context.Context, msg queue.SheetReplace) error
}

var _ SheetPublisher = (*queue.Publisher)(nil)

// ExportService assembles the flattened order table of an event.
type ExportService struct {
	config EventConfig
	orders repo.OrderRepo
	pub    SheetPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(config EventConfig, orders repo.OrderRepo, pub SheetPublisher, log *slog.Logger) *ExportService {
	if log == nil {
		log = slog.Default()
	}
	return &ExportService{config: config, orders: orders, pub: pub, log: log, now: time.Now}
}

// Table returns the event and its export table: one row per order line,
// with the answers flattened against the event's current form.
func (s *ExportService) Table(ctx context.Context, eventID uuid.UUID) (domain.Event, domain.ExportTable, error) {
	event, err := s.config.GetByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.ExportTable{}, fmt.Errorf("service.ExportService.Table: %w", err)
	}
	orders, err := s.orders.ListByEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.ExportTable{}, fmt.Errorf("service.ExportService.Table: %w", err)
	}
	s.logDrift(ctx, event, orders)
	return event, flatten.Table(event.Schema, orders), nil
}

// SyncSheet publishes a full-replace sheet.replace message carrying the
// same table Table returns. Returns the table that was sent.
func (s *ExportService) SyncSheet(ctx context.Context, eventID uuid.UUID) (domain.ExportTable, error) {
	if s.pub == nil {
		return domain.ExportTable{}, fmt.Errorf("service.ExportService.SyncSheet: %w", queue.ErrDisabled)
	}
	event, table, err := s.Table(ctx, eventID)
	if err != nil {
		return domain.ExportTable{}, fmt.Errorf("service.ExportService.SyncSheet: %w", err)
	}
	msg := queue.SheetReplace{
		EventID:     event.ID,
		EventSlug:   event.Slug,
		Headers:     table.Headers,
		Rows:        table.Rows,
		GeneratedAt: s.now().UTC(),
	}
	if err := s.pub.PublishSheetReplace(ctx, msg); err != nil {
		return domain.ExportTable{}, fmt.Errorf("service.ExportService.SyncSheet: %w", err)
	}
	s.log.InfoContext(ctx, "sheet sync queued", "event_id", eventID, "rows", len(table.Rows))
	return table, nil
}

// logDrift reports answer keys the current form no longer knows. They are
// left out of the export, which is expected after a form edit.
func (s *ExportService) logDrift(ctx context.Context, event domain.Event, orders []domain.Order) {
	if !s.log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	labels := event.Schema.ByLabel()
	orphaned := map[string]int{}
	for _, o := range orders {
		for _, e := range o.Answers {
			if _, ok := labels[e.Key]; !ok && e.Key != domain.EventNameKey {
				orphaned[e.Key]++
			}
		}
	}
	for key, n := range orphaned {
		s.log.DebugContext(ctx, "answer key not in current form; skipped in export",
			"event_id", event.ID, "key", key, "orders", n)
	}
}
