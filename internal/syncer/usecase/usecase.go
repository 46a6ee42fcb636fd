package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/config"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/gateway"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/money"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/netmon"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/order"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/product"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/syncer"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/syncer/dto"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/syncqueue"
	"go.uber.org/zap"
)

// errPoisonPayload marks a queue item whose payload fails its kind's
// schema. Such items are dropped immediately instead of retried forever.
var errPoisonPayload = errors.New("unparseable queue payload")

type syncUseCase struct {
	products product.Repository
	orders   order.Repository
	queue    syncqueue.Repository
	gw       gateway.Gateway
	monitor  *netmon.Monitor
	logger   *zap.Logger

	interval    time.Duration
	maxAttempts int
	cashierID   string

	syncing atomic.Bool

	mu        sync.Mutex
	lastSync  *time.Time
	listeners map[int]func(model.SyncStatus)
	nextID    int
}

func NewSyncUseCase(
	products product.Repository,
	orders order.Repository,
	queue syncqueue.Repository,
	gw gateway.Gateway,
	monitor *netmon.Monitor,
	cfg *config.Config,
	logger *zap.Logger,
) syncer.UseCase {
	return &syncUseCase{
		products:    products,
		orders:      orders,
		queue:       queue,
		gw:          gw,
		monitor:     monitor,
		logger:      logger,
		interval:    cfg.Sync.Interval,
		maxAttempts: cfg.Sync.MaxAttempts,
		cashierID:   cfg.App.CashierID,
		listeners:   make(map[int]func(model.SyncStatus)),
	}
}

func (s *syncUseCase) Start(ctx context.Context) {
	s.logger.Info("Starting sync engine", zap.Duration("interval", s.interval))

	unsubscribe := s.monitor.Subscribe(func(online bool) {
		if online {
			// Just came online, sync immediately.
			go s.performSync(context.WithoutCancel(ctx))
		}
		s.notify(ctx)
	})
	defer unsubscribe()

	if s.monitor.Online() {
		go s.performSync(context.WithoutCancel(ctx))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping sync engine")
			return
		case <-ticker.C:
			s.performSync(ctx)
		}
	}
}

// performSync runs one pass: catalog refresh, order flush, queue drain.
// The syncing flag is the only mutual-exclusion guard; a trigger arriving
// mid-pass is a no-op. Phase failures are logged, never propagated.
func (s *syncUseCase) performSync(ctx context.Context) {
	if !s.monitor.Online() {
		s.logger.Debug("Skipping sync pass, device offline")
		return
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return
	}
	s.notify(ctx)

	s.refreshCatalog(ctx)
	s.flushOrders(ctx)
	s.drainQueue(ctx)

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastSync = &now
	s.mu.Unlock()

	s.syncing.Store(false)
	s.notify(ctx)
	s.logger.Debug("Sync pass completed", zap.Time("at", now))
}

func (s *syncUseCase) refreshCatalog(ctx context.Context) {
	products, err := s.gw.FetchCatalog(ctx)
	if err != nil {
		// Keep serving the last-known catalog; never clear it on failure.
		s.logger.Warn("Catalog refresh failed, keeping local snapshot", zap.Error(err))
		s.observeNetwork(err)
		return
	}

	if err := s.products.ReplaceCatalog(ctx, products); err != nil {
		s.logger.Warn("Failed to store catalog snapshot", zap.Error(err))
		return
	}
	s.logger.Info("Catalog snapshot replaced", zap.Int("products", len(products)))
}

func (s *syncUseCase) flushOrders(ctx context.Context) {
	unsynced, err := s.orders.ListUnsynced(ctx)
	if err != nil {
		s.logger.Warn("Failed to list unsynced orders", zap.Error(err))
		return
	}
	if len(unsynced) == 0 {
		return
	}
	s.logger.Info("Flushing unsynced orders", zap.Int("count", len(unsynced)))

	for i := range unsynced {
		o := &unsynced[i]
		resp, err := s.gw.CreateOrder(ctx, createRequest(o))
		if err != nil {
			if errors.Is(err, gateway.ErrAuth) {
				// Needs re-authentication; retrying the rest this pass
				// would only fail the same way.
				s.logger.Warn("Order flush paused until re-authentication", zap.Error(err))
				return
			}
			s.observeNetwork(err)
			s.logger.Error("Failed to sync order, queueing retry",
				zap.Int64("local_order_id", o.ID),
				zap.Error(err),
			)
			s.enqueueCreateOrder(ctx, o)
			continue
		}
		s.acknowledgeOrder(ctx, o.ID, o.Items, resp.OrderID)
	}
}

func (s *syncUseCase) enqueueCreateOrder(ctx context.Context, o *model.Order) {
	payload, err := json.Marshal(model.CreateOrderPayload{LocalOrderID: o.ID, Order: *o})
	if err != nil {
		s.logger.Error("Failed to encode retry payload", zap.Int64("local_order_id", o.ID), zap.Error(err))
		return
	}
	if _, err := s.queue.Enqueue(ctx, model.OpCreateOrder, payload); err != nil {
		s.logger.Error("Failed to enqueue retry", zap.Int64("local_order_id", o.ID), zap.Error(err))
	}
}

// acknowledgeOrder marks the order synced and applies the best-effort
// local stock decrement.
func (s *syncUseCase) acknowledgeOrder(ctx context.Context, localID int64, items []model.OrderItem, remoteID string) {
	if err := s.orders.MarkSynced(ctx, localID, remoteID); err != nil {
		s.logger.Error("Failed to mark order synced",
			zap.Int64("local_order_id", localID),
			zap.String("remote_order_id", remoteID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Order synced",
		zap.Int64("local_order_id", localID),
		zap.String("remote_order_id", remoteID),
	)
	for _, item := range items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("Failed to decrement local stock",
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}

func (s *syncUseCase) drainQueue(ctx context.Context) {
	items, err := s.queue.DequeueAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to read sync queue", zap.Error(err))
		return
	}

	for i := range items {
		item := &items[i]
		err := s.dispatch(ctx, item)
		if err == nil {
			if err := s.queue.Remove(ctx, item.ID); err != nil {
				s.logger.Error("Failed to remove acknowledged queue item", zap.Int64("item_id", item.ID), zap.Error(err))
			}
			continue
		}

		if errors.Is(err, errPoisonPayload) {
			s.logger.Error("Dropping corrupt queue item",
				zap.Int64("item_id", item.ID),
				zap.String("kind", string(item.Kind)),
				zap.Error(err),
			)
			s.queue.Remove(ctx, item.ID)
			continue
		}

		s.observeNetwork(err)
		s.logger.Error("Queue item failed",
			zap.Int64("item_id", item.ID),
			zap.String("kind", string(item.Kind)),
			zap.Int("attempts", item.Attempts+1),
			zap.Error(err),
		)
		if err := s.queue.RecordAttempt(ctx, item.ID); err != nil {
			s.logger.Error("Failed to record queue attempt", zap.Int64("item_id", item.ID), zap.Error(err))
			continue
		}
		if item.Attempts+1 >= s.maxAttempts {
			s.logger.Warn("Giving up on queue item after attempt ceiling",
				zap.Int64("item_id", item.ID),
				zap.Int("attempts", item.Attempts+1),
			)
			s.queue.Remove(ctx, item.ID)
		}
	}
}

func (s *syncUseCase) dispatch(ctx context.Context, item *model.SyncQueueItem) error {
	switch item.Kind {
	case model.OpCreateOrder:
		return s.handleCreateOrder(ctx, item.Payload)
	case model.OpUpdateProduct:
		var p model.UpdateProductPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil || p.ProductID == "" {
			return fmt.Errorf("%w: %v", errPoisonPayload, err)
		}
		// No server surface for pushing product edits yet; acknowledge.
		s.logger.Debug("Acknowledged product update", zap.String("product_id", p.ProductID))
		return nil
	case model.OpUpdateOrderStatus:
		var p model.UpdateOrderStatusPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil || p.RemoteOrderID == "" {
			return fmt.Errorf("%w: %v", errPoisonPayload, err)
		}
		s.logger.Debug("Acknowledged order status update", zap.String("remote_order_id", p.RemoteOrderID))
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", errPoisonPayload, item.Kind)
	}
}

func (s *syncUseCase) handleCreateOrder(ctx context.Context, raw json.RawMessage) error {
	var p model.CreateOrderPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", errPoisonPayload, err)
	}
	if p.LocalOrderID == 0 || len(p.Order.Items) == 0 {
		return fmt.Errorf("%w: incomplete create-order payload", errPoisonPayload)
	}

	// The order may have synced through a later flush while this retry sat
	// in the queue; creating it again would duplicate the sale.
	current, err := s.orders.Get(ctx, p.LocalOrderID)
	if err != nil {
		return err
	}
	if current != nil && current.Synced {
		return nil
	}

	resp, err := s.gw.CreateOrder(ctx, createRequest(&p.Order))
	if err != nil {
		return err
	}
	s.acknowledgeOrder(ctx, p.LocalOrderID, p.Order.Items, resp.OrderID)
	return nil
}

func createRequest(o *model.Order) *gateway.CreateOrderRequest {
	items := make([]gateway.CreateOrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, gateway.CreateOrderItem{ProductID: item.ProductID, Qty: item.Quantity})
	}
	createdAt := o.CreatedAt
	return &gateway.CreateOrderRequest{
		PaymentMethod:   o.PaymentMethod,
		Items:           items,
		ClientCreatedAt: &createdAt,
	}
}

// observeNetwork reports a transport-level failure to the monitor so the
// online flag flips without waiting for the next probe.
func (s *syncUseCase) observeNetwork(err error) {
	if errors.Is(err, gateway.ErrNetwork) {
		s.monitor.SetOnline(false)
	}
}

func (s *syncUseCase) GetProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *syncUseCase) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return s.products.Search(ctx, query)
}

func (s *syncUseCase) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	return s.products.FindByBarcode(ctx, barcode)
}

func (s *syncUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (int64, error) {
	if !input.PaymentMethod.Valid() {
		return 0, fmt.Errorf("payment method %q: %w", input.PaymentMethod, gateway.ErrValidation)
	}
	if len(input.Items) == 0 {
		return 0, fmt.Errorf("order has no items: %w", gateway.ErrValidation)
	}

	lines := make([]money.Line, 0, len(input.Items))
	items := make([]model.OrderItem, 0, len(input.Items))
	for _, cart := range input.Items {
		if cart.Quantity < 1 {
			return 0, fmt.Errorf("quantity %d for product %s: %w", cart.Quantity, cart.ProductID, gateway.ErrValidation)
		}
		p, err := s.products.FindByID(ctx, cart.ProductID)
		if err != nil {
			return 0, fmt.Errorf("look up product %s: %w", cart.ProductID, err)
		}
		if p == nil {
			return 0, fmt.Errorf("product %s: %w", cart.ProductID, gateway.ErrNotFound)
		}

		lineTotal := money.LineTotal(p.PriceCents, cart.Quantity)
		lines = append(lines, money.Line{UnitPriceCents: p.PriceCents, Quantity: cart.Quantity, TaxRate: p.TaxRate})
		items = append(items, model.OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       cart.Quantity,
			UnitPriceCents: p.PriceCents,
			LineTotalCents: lineTotal,
			LineTaxCents:   money.LineTax(lineTotal, p.TaxRate),
		})
	}

	totals, err := money.Calculate(lines)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, gateway.ErrValidation)
	}

	cashierID := input.CashierID
	if cashierID == "" {
		cashierID = s.cashierID
	}

	// Totals are computed once at checkout and stored; they are never
	// silently recomputed even if catalog prices change later.
	o := &model.Order{
		Items:         items,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		PaymentMethod: input.PaymentMethod,
		Status:        model.StatusCompleted,
		CreatedAt:     time.Now().UTC(),
		Synced:        false,
		CashierID:     cashierID,
	}

	id, err := s.orders.Insert(ctx, o)
	if err != nil {
		return 0, fmt.Errorf("store order locally: %w", err)
	}
	s.logger.Info("Order recorded locally", zap.Int64("local_order_id", id), zap.Int64("total_cents", o.TotalCents))

	// Opportunistic: the order is already durable, sync outcome does not
	// affect the caller.
	if s.monitor.Online() {
		go s.performSync(context.WithoutCancel(ctx))
	}
	s.notify(ctx)

	return id, nil
}

func (s *syncUseCase) GetOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return s.orders.List(ctx, limit)
}

func (s *syncUseCase) UnsyncedCount(ctx context.Context) (int64, error) {
	return s.orders.CountUnsynced(ctx)
}

func (s *syncUseCase) ForceSync(ctx context.Context) error {
	if !s.monitor.Online() {
		return fmt.Errorf("cannot sync now: %w", gateway.ErrOffline)
	}
	s.performSync(ctx)
	return nil
}

func (s *syncUseCase) ForceSyncOrders(ctx context.Context) (*dto.FlushReport, error) {
	if !s.monitor.Online() {
		return nil, fmt.Errorf("cannot sync orders now: %w", gateway.ErrOffline)
	}
	// Same flag as performSync: the bulk push and the regular flush must
	// never dispatch the same unsynced order concurrently.
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("cannot sync orders now: %w", syncer.ErrBusy)
	}
	defer func() {
		s.syncing.Store(false)
		s.notify(ctx)
	}()
	s.notify(ctx)

	unsynced, err := s.orders.ListUnsynced(ctx)
	if err != nil {
		return nil, err
	}
	if len(unsynced) == 0 {
		return &dto.FlushReport{}, nil
	}

	req := &gateway.SyncOrdersRequest{Orders: make([]gateway.SyncOrderEnvelope, 0, len(unsynced))}
	for i := range unsynced {
		req.Orders = append(req.Orders, gateway.SyncOrderEnvelope{
			TempID:  strconv.FormatInt(unsynced[i].ID, 10),
			Payload: *createRequest(&unsynced[i]),
		})
	}

	resp, err := s.gw.SyncOrders(ctx, req)
	if err != nil {
		s.observeNetwork(err)
		return nil, err
	}

	byTempID := make(map[string]*model.Order, len(unsynced))
	for i := range unsynced {
		byTempID[strconv.FormatInt(unsynced[i].ID, 10)] = &unsynced[i]
	}

	report := &dto.FlushReport{}
	for _, result := range resp.Results {
		o, ok := byTempID[result.TempID]
		if !ok {
			continue
		}
		if result.Status == "ok" && result.OrderID != "" {
			s.acknowledgeOrder(ctx, o.ID, o.Items, result.OrderID)
			report.Synced++
		} else {
			s.logger.Error("Bulk sync rejected order",
				zap.Int64("local_order_id", o.ID),
				zap.String("error", result.Error),
			)
			report.Failed++
		}
	}

	s.logger.Info("Bulk order sync finished", zap.Int("synced", report.Synced), zap.Int("failed", report.Failed))
	return report, nil
}

func (s *syncUseCase) Status(ctx context.Context) model.SyncStatus {
	s.mu.Lock()
	lastSync := s.lastSync
	s.mu.Unlock()

	var pending int64
	if unsynced, err := s.orders.CountUnsynced(ctx); err == nil {
		pending += unsynced
	}
	if queued, err := s.queue.Count(ctx); err == nil {
		pending += queued
	}

	return model.SyncStatus{
		Online:       s.monitor.Online(),
		Syncing:      s.syncing.Load(),
		LastSync:     lastSync,
		PendingCount: pending,
	}
}

func (s *syncUseCase) Subscribe(fn func(model.SyncStatus)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *syncUseCase) notify(ctx context.Context) {
	status := s.Status(ctx)

	s.mu.Lock()
	listeners := make([]func(model.SyncStatus), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}
