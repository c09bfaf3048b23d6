package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-ledger")

// GormLedgerWithTracing wraps GormLedger with tracing spans around the
// allocation hot path.
type GormLedgerWithTracing struct {
	*GormLedger
}

func NewGormLedgerWithTracing(db *gorm.DB) *GormLedgerWithTracing {
	return &GormLedgerWithTracing{GormLedger: NewGormLedger(db)}
}

// AllocateWithContext records the request and the claimed count so a
// shortfall is visible on the trace.
func (r *GormLedgerWithTracing) AllocateWithContext(ctx context.Context, skuID, binID uint, quantity int) ([]domain.LockTag, error) {
	_, span := tracer.Start(ctx, "ledger.Allocate",
		trace.WithAttributes(
			attribute.Int("tag.sku_id", int(skuID)),
			attribute.Int("tag.bin_id", int(binID)),
			attribute.Int("allocation.requested", quantity),
		),
	)
	defer span.End()

	tags, err := r.GormLedger.Allocate(skuID, binID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("allocation.claimed", len(tags)))
	if len(tags) < quantity {
		span.SetAttributes(attribute.Int("allocation.shortfall", quantity-len(tags)))
	}
	return tags, nil
}

func (r *GormLedgerWithTracing) PutawayWithContext(ctx context.Context, skuID, binID uint, batchID string, quantity int) ([]domain.LockTag, error) {
	_, span := tracer.Start(ctx, "ledger.Putaway",
		trace.WithAttributes(
			attribute.Int("tag.sku_id", int(skuID)),
			attribute.Int("tag.bin_id", int(binID)),
			attribute.Int("putaway.quantity", quantity),
		),
	)
	defer span.End()

	tags, err := r.GormLedger.Putaway(skuID, binID, batchID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return tags, nil
}

func (r *GormLedgerWithTracing) MarkScannedWithContext(ctx context.Context, tagID uint) error {
	_, span := tracer.Start(ctx, "ledger.MarkScanned",
		trace.WithAttributes(attribute.Int("tag.id", int(tagID))),
	)
	defer span.End()

	if err := r.GormLedger.MarkScanned(tagID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *GormLedgerWithTracing) CountInStockWithContext(ctx context.Context, skuID, binID uint) (int64, error) {
	_, span := tracer.Start(ctx, "ledger.CountInStock",
		trace.WithAttributes(
			attribute.Int("tag.sku_id", int(skuID)),
			attribute.Int("tag.bin_id", int(binID)),
		),
	)
	defer span.End()

	count, err := r.GormLedger.CountInStock(skuID, binID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("result.in_stock", count))
	return count, nil
}
