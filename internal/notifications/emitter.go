package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/capitlshop/storefront-backend/pkg/enums"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
	"github.com/capitlshop/storefront-backend/pkg/logger"
)

// Emitter is the fire-and-forget side of the sink handed to the cart and
// checkout flows. Delivery failures are logged, never propagated, so a
// broken feed cannot block a purchase.
type Emitter struct {
	svc Service
	log *logger.Logger
}

// NewEmitter wires an emitter over the notification service.
func NewEmitter(svc Service, log *logger.Logger) (*Emitter, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification service required")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Emitter{svc: svc, log: log}, nil
}

// Info records an informational event for the shopper.
func (e *Emitter) Info(ctx context.Context, shopperID, message string) {
	e.emit(ctx, shopperID, enums.NotificationLevelInfo, message)
}

// Error records a failure event for the shopper.
func (e *Emitter) Error(ctx context.Context, shopperID, message string) {
	e.emit(ctx, shopperID, enums.NotificationLevelError, message)
}

// Success records a success event for the shopper.
func (e *Emitter) Success(ctx context.Context, shopperID, message string) {
	e.emit(ctx, shopperID, enums.NotificationLevelSuccess, message)
}

func (e *Emitter) emit(ctx context.Context, shopperID string, level enums.NotificationLevel, message string) {
	userID, err := uuid.Parse(shopperID)
	if err != nil {
		e.log.Error(ctx, "notification skipped: bad shopper id", err)
		return
	}
	if err := e.svc.Notify(ctx, userID, level, message); err != nil {
		e.log.Error(ctx, "notification delivery failed", err)
	}
}
