package service

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"sleek-shop/internal/events"
	"sleek-shop/internal/model"
	"sleek-shop/internal/pricing"
	"sleek-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	maxPage      = 1_000_000

	// maxItemQuantity keeps quantities well inside the INTEGER column.
	maxItemQuantity = 10000

	guestScope = "guest"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	calculator  *pricing.Calculator
	idempotency IdempotencyStore
	publisher   events.Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service. A nil idempotency store
// disables replay detection and a nil publisher discards events.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	calculator *pricing.Calculator,
	idempotency IdempotencyStore,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	if calculator == nil {
		calculator = pricing.NewCalculator(nil)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		calculator:  calculator,
		idempotency: idempotency,
		publisher:   publisher,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder validates, prices and persists a checkout.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest, caller *model.Identity, idempotencyKey string) (order *model.Order, err error) {
	if err := validateOrderRequest(req); err != nil {
		s.logger.Debug().Err(err).Msg("order validation failed")
		return nil, err
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if s.idempotency != nil && idempotencyKey != "" {
		scope := idempotencyScope(caller)

		replayed, replayErr := s.replay(ctx, scope, idempotencyKey)
		if replayErr != nil || replayed != nil {
			return replayed, replayErr
		}

		locked, lockErr := s.idempotency.TryLock(ctx, scope, idempotencyKey)
		if lockErr != nil {
			s.logger.Error().Err(lockErr).Str("scope", scope).Msg("failed to acquire idempotency lock")
			return nil, fmt.Errorf("failed to acquire idempotency lock: %w", lockErr)
		}
		if !locked {
			s.logger.Warn().Str("scope", scope).Str("idempotency_key", idempotencyKey).Msg("duplicate request in flight")
			return nil, model.ErrRequestInFlight
		}

		defer func() {
			if err != nil {
				if relErr := s.idempotency.Release(context.WithoutCancel(ctx), scope, idempotencyKey); relErr != nil {
					s.logger.Error().Err(relErr).Str("scope", scope).Msg("failed to release idempotency lock")
				}
				return
			}
			if remErr := s.idempotency.Remember(context.WithoutCancel(ctx), scope, idempotencyKey, order.ID.String()); remErr != nil {
				s.logger.Error().Err(remErr).Str("order_id", order.ID.String()).Msg("failed to remember idempotency key")
				// Unlock so a retry is not rejected as in flight until the lock expires.
				if relErr := s.idempotency.Release(context.WithoutCancel(ctx), scope, idempotencyKey); relErr != nil {
					s.logger.Error().Err(relErr).Str("scope", scope).Msg("failed to release idempotency lock")
				}
			}
		}()
	}

	order, err = s.placeOrder(ctx, req, caller)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

// replay returns the order an earlier request with the same key created.
func (s *orderService) replay(ctx context.Context, scope, key string) (*model.Order, error) {
	existing, ok, err := s.idempotency.Recall(ctx, scope, key)
	if err != nil {
		s.logger.Error().Err(err).Str("scope", scope).Msg("failed to recall idempotency key")
		return nil, fmt.Errorf("failed to recall idempotency key: %w", err)
	}
	if !ok {
		return nil, nil
	}

	id, err := uuid.Parse(existing)
	if err != nil {
		s.logger.Warn().Str("value", existing).Msg("ignoring malformed idempotency record")
		return nil, nil
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order != nil {
		s.logger.Info().Str("order_id", order.ID.String()).Str("scope", scope).Msg("replayed idempotent order")
	}
	return order, nil
}

// placeOrder snapshots the catalogue, prices the lines and writes the order
// header and items in one transaction.
func (s *orderService) placeOrder(ctx context.Context, req *model.OrderRequest, caller *model.Identity) (*model.Order, error) {
	productIDs := make([]int64, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up products")
		return nil, fmt.Errorf("failed to look up products: %w", err)
	}

	catalogue := make(map[int64]model.Product, len(products))
	for _, p := range products {
		catalogue[p.ID] = p
	}

	now := s.now()
	order := newOrder(req, caller, now)

	lines := make([]pricing.Line, len(req.Items))
	order.Items = make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		product, ok := catalogue[item.ProductID]
		if !ok {
			s.logger.Warn().Int64("product_id", item.ProductID).Msg("product not found or inactive")
			return nil, model.ErrProductNotFound
		}

		productID := product.ID
		lines[i] = pricing.Line{Price: product.Price, Quantity: item.Quantity}
		order.Items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Price:       product.Price,
			Quantity:    item.Quantity,
			Subtotal:    pricing.LineSubtotal(product.Price, item.Quantity),
			Position:    i,
			CreatedAt:   now,
		}
	}

	breakdown, err := s.calculator.Calculate(lines, order.ShippingMethod, req.ShippingCost)
	if err != nil {
		return nil, err
	}
	order.Subtotal = breakdown.Subtotal
	order.ShippingCost = breakdown.ShippingCost
	order.Tax = breakdown.Tax
	order.Total = breakdown.Total

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, getErr := s.orderRepo.GetByID(ctx, order.ID)
	if getErr != nil || created == nil {
		// The order is committed; fall back to what was written.
		s.logger.Warn().Err(getErr).Str("order_id", order.ID.String()).Msg("failed to reload created order")
		return order, nil
	}
	return created, nil
}

// ListOrders returns one page of the administrative order listing.
func (s *orderService) ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Page > maxPage {
		return nil, model.ErrPageOutOfRange
	}
	filter.Limit = clampLimit(filter.Limit, defaultLimit)

	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.Status != "" {
		if _, err := model.ParseFulfillmentStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", filter.Page).
			Int("limit", filter.Limit).
			Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:     orders,
		Pagination: model.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// ListUserOrders returns the caller's own orders, newest first.
func (s *orderService) ListUserOrders(ctx context.Context, caller *model.Identity) ([]model.Order, error) {
	if caller == nil {
		return nil, model.ErrMissingToken
	}

	orders, err := s.orderRepo.ListByUser(ctx, caller.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", caller.ID).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID or order number.
func (s *orderService) GetOrder(ctx context.Context, ref string) (*model.Order, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByReference(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("ref", ref).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("ref", ref).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// GetUserOrder retrieves an order for a signed-in customer. Orders placed by
// someone else are reported as missing unless the caller is an administrator.
func (s *orderService) GetUserOrder(ctx context.Context, caller *model.Identity, ref string) (*model.Order, error) {
	if caller == nil {
		return nil, model.ErrMissingToken
	}

	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return order, nil
	}
	if order.UserID == nil || *order.UserID != caller.ID {
		s.logger.Warn().
			Int64("user_id", caller.ID).
			Str("order_id", order.ID.String()).
			Msg("order requested by non-owner")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus sets the fulfillment status of an order.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status string) (*model.Order, error) {
	if _, err := model.ParseFulfillmentStatus(status); err != nil {
		return nil, err
	}
	return s.updateOrder(ctx, id, events.OrderStatusChanged, func(o *model.Order) error {
		return o.SetFulfillmentStatus(status)
	})
}

// UpdatePaymentStatus sets the payment status of an order.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus string) (*model.Order, error) {
	if _, err := model.ParsePaymentStatus(paymentStatus); err != nil {
		return nil, err
	}
	return s.updateOrder(ctx, id, events.OrderPaymentStatusChanged, func(o *model.Order) error {
		return o.SetPaymentStatus(paymentStatus)
	})
}

// updateOrder locks the order row, applies change and persists both status
// columns before returning the reloaded order.
func (s *orderService) updateOrder(ctx context.Context, rawID, eventType string, change func(*model.Order) error) (*model.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, model.ErrOrderNotFound
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	previousStatus, previousPayment := order.Status, order.PaymentStatus
	if err = change(order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.UpdateStatuses(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	updated, getErr := s.orderRepo.GetByID(ctx, id)
	if getErr != nil || updated == nil {
		s.logger.Warn().Err(getErr).Str("order_id", id.String()).Msg("failed to reload updated order")
		updated = order
	}

	s.publish(ctx, eventType, updated)

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status_from", string(previousStatus)).
		Str("status_to", string(updated.Status)).
		Str("payment_from", string(previousPayment)).
		Str("payment_to", string(updated.PaymentStatus)).
		Msg("order status updated")

	return updated, nil
}

// Stats computes the dashboard aggregates.
func (s *orderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute order stats")
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return stats, nil
}

// publish emits an order event. Delivery failures never fail the request.
func (s *orderService) publish(ctx context.Context, eventType string, order *model.Order) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), events.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn().Err(err).
			Str("event", eventType).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}

// newOrder builds the order header from req. Totals are filled in by the caller.
func newOrder(req *model.OrderRequest, caller *model.Identity, now time.Time) *model.Order {
	id := uuid.New()

	var userID *int64
	if caller != nil {
		uid := caller.ID
		userID = &uid
	}

	return &model.Order{
		ID:                   id,
		OrderNumber:          orderNumber(id, now),
		UserID:               userID,
		CustomerEmail:        trimmedOrNil(req.CustomerEmail),
		CustomerName:         strings.TrimSpace(req.CustomerName),
		CustomerPhone:        strings.TrimSpace(req.CustomerPhone),
		ShippingAddressLine1: strings.TrimSpace(req.ShippingAddressLine1),
		ShippingAddressLine2: trimmedOrNil(req.ShippingAddressLine2),
		ShippingCity:         strings.TrimSpace(req.ShippingCity),
		ShippingState:        strings.TrimSpace(req.ShippingState),
		ShippingZip:          strings.TrimSpace(req.ShippingZip),
		ShippingCountry:      strings.TrimSpace(req.ShippingCountry),
		ShippingMethod:       strings.TrimSpace(req.ShippingMethod),
		PaymentMethod:        strings.TrimSpace(req.PaymentMethod),
		BkashNumber:          trimmedOrNil(req.BkashNumber),
		BkashTransactionID:   trimmedOrNil(req.BkashTransactionID),
		Notes:                trimmedOrNil(req.Notes),
		Status:               model.StatusPending,
		PaymentStatus:        model.PaymentPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// orderNumber formats ORD-<unix millis>-<6 hex>.
func orderNumber(id uuid.UUID, now time.Time) string {
	suffix := strings.ReplaceAll(id.String(), "-", "")[:6]
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// validateOrderRequest checks the checkout payload in a fixed order so the
// first failing rule is the one reported.
func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return model.ErrMissingCustomer
	}

	for _, item := range req.Items {
		if item.ProductID <= 0 {
			return model.ErrMissingProductID
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
		if item.Quantity > maxItemQuantity {
			return model.ErrQuantityTooLarge
		}
	}

	for _, field := range []string{
		req.ShippingAddressLine1,
		req.ShippingCity,
		req.ShippingState,
		req.ShippingZip,
		req.ShippingCountry,
	} {
		if strings.TrimSpace(field) == "" {
			return model.ErrMissingAddress
		}
	}

	if email := trimmedOrNil(req.CustomerEmail); email != nil {
		addr, err := mail.ParseAddress(*email)
		if err != nil || addr.Address != *email {
			return model.ErrInvalidEmail
		}
	}

	if req.ShippingCost != nil && req.ShippingCost.IsNegative() {
		return model.ErrNegativeShipping
	}

	return nil
}

func idempotencyScope(caller *model.Identity) string {
	if caller == nil {
		return guestScope
	}
	return "user:" + strconv.FormatInt(caller.ID, 10)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
