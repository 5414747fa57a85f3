package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

type TransitionOrderCommand struct {
	OrderID      string
	TargetStatus string
}

func (c TransitionOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	if strings.TrimSpace(c.TargetStatus) == "" {
		return errors.New("target status is required")
	}
	return nil
}

// TransitionOrderHandler handles TransitionOrderCommand.
type TransitionOrderHandler interface {
	Handle(ctx context.Context, cmd TransitionOrderCommand) (*domain.Order, error)
}

type TransitionOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
	now    func() time.Time
}

func NewTransitionOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus) *TransitionOrderCommandHandler {
	return &TransitionOrderCommandHandler{
		repo:   repo,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Handle validates the requested change against the transition table and asks
// the repository to apply it atomically. Cancelling an already cancelled order
// is a no-op rather than an error, which is what keeps a retried cancellation
// from releasing stock twice.
func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	target, err := domain.ParseStatus(cmd.TargetStatus)
	if err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if target == domain.StatusCancelled && order.Status == domain.StatusCancelled {
		return order, nil
	}

	change, err := order.PlanTransition(target)
	if err != nil {
		return nil, err
	}

	if err := h.repo.ApplyTransition(ctx, *change); err != nil {
		return nil, err
	}

	order.Status = target
	order.UpdatedAt = h.now()

	if target == domain.StatusCancelled {
		if err := h.events.PublishOrderCancelled(ctx, order.ID); err != nil {
			return order, fmt.Errorf("order cancelled but failed to publish event: %w", err)
		}
		return order, nil
	}

	if err := h.events.PublishOrderStatusChanged(ctx, order.ID, change.From, target); err != nil {
		return order, fmt.Errorf("order updated but failed to publish event: %w", err)
	}

	return order, nil
}
