package app

import (
	"context"
	"log/slog"

	discountports "github.com/dejobratic/storefront/internal/discounts/ports"
	invports "github.com/dejobratic/storefront/internal/inventory/ports"
	"github.com/dejobratic/storefront/internal/orders/app/commands"
	"github.com/dejobratic/storefront/internal/orders/app/queries"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo              ports.OrderRepository
	idemStore         ports.IdempotencyStore
	createHandler     commands.CreateOrderHandler
	transitionHandler commands.TransitionOrderHandler
	getOrderHandler   *queries.GetOrderQueryHandler
	listOrdersHandler *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	catalog invports.Catalog,
	discounts discountports.DiscountRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	createHandler := commands.NewObservableCreateOrderHandler(
		commands.NewCreateOrderCommandHandler(repo, catalog, discounts, events),
		logger,
		metrics,
	)
	transitionHandler := commands.NewObservableTransitionOrderHandler(
		commands.NewTransitionOrderCommandHandler(repo, events),
		logger,
		metrics,
	)

	return &Service{
		repo:              repo,
		idemStore:         idem,
		createHandler:     createHandler,
		transitionHandler: transitionHandler,
		getOrderHandler:   queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler: queries.NewListOrdersQueryHandler(repo),
	}
}

// CreateOrderInput captures the payload for creating an order.
type CreateOrderInput struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	ShippingAddr  string          `json:"shipping_address"`
	Items         []LineItemInput `json:"items"`
	DiscountCode  string          `json:"discount_code"`
}

// LineItemInput names one sellable unit and quantity.
type LineItemInput struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CreateOrder orchestrates order creation, stock reservation and event emission.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		ShippingAddr:  input.ShippingAddr,
		DiscountCode:  input.DiscountCode,
	}
	for _, item := range input.Items {
		cmd.Items = append(cmd.Items, commands.LineItemRequest{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return s.createHandler.Handle(ctx, cmd)
}

// TransitionOrderStatus validates and applies a status change.
func (s *Service) TransitionOrderStatus(ctx context.Context, orderID, targetStatus string) (*domain.Order, error) {
	return s.transitionHandler.Handle(ctx, commands.TransitionOrderCommand{
		OrderID:      orderID,
		TargetStatus: targetStatus,
	})
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.listOrdersHandler.Handle(ctx, filter)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
