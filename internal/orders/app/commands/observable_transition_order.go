package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableTransitionOrderHandler struct {
	handler TransitionOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableTransitionOrderHandler(handler TransitionOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableTransitionOrderHandler {
	return &ObservableTransitionOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableTransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "TransitionOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderTransition(ctx, cmd.TargetStatus, success)
		o.metrics.RecordOrderTransitionDuration(ctx, duration)
	}()

	o.logger.InfoContext(ctx, "transitioning order",
		"order_id", cmd.OrderID,
		"target_status", cmd.TargetStatus,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to transition order",
			"error", err,
			"order_id", cmd.OrderID,
			"target_status", cmd.TargetStatus,
		)
		return order, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order transitioned successfully",
		"order_id", order.ID,
		"status", string(order.Status),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
