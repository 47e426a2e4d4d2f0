package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

// Service описывает прикладные операции над агрегатом заказа,
// включая lifecycle-переходы pending → confirmed / cancelled.
type Service interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	Update(ctx context.Context, order domain.Order) (domain.Order, error)
	Delete(ctx context.Context, orderID string) error
	Confirm(ctx context.Context, userID, orderID string) (domain.OrderDocument, error)
	Cancel(ctx context.Context, userID, orderID, reason string) (string, error)
}

type service struct {
	orders    domain.OrderRepository
	users     domain.UserRepository
	documents domain.DocumentRepository
	outbox    domain.OutboxRepository
	renderer  domain.DocumentRenderer
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	orders domain.OrderRepository,
	users domain.UserRepository,
	documents domain.DocumentRepository,
	outbox domain.OutboxRepository,
	renderer domain.DocumentRenderer,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &service{
		orders:    orders,
		users:     users,
		documents: documents,
		outbox:    outbox,
		renderer:  renderer,
		logger:    logger,
		metrics:   metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	users domain.UserRepository,
	documents domain.DocumentRepository,
	outbox domain.OutboxRepository,
	renderer domain.DocumentRenderer,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &service{
		orders:    orders,
		users:     users,
		documents: documents,
		outbox:    outbox,
		renderer:  renderer,
		logger:    logger,
	}
}

// Create сохраняет новый заказ и формирует его первый документ.
// Сервису передаётся уже провалидированный снаружи заказ: totalPrice
// не пересчитывается, согласованность цены на совести вызывающего.
func (s *service) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	start := time.Now()
	defer s.observe("create", start)

	if order.ID != "" {
		return domain.Order{}, domain.ErrOrderAlreadyPersisted
	}
	if violations := order.ValidateInvariants(); len(violations) > 0 {
		return domain.Order{}, violations[0]
	}

	buyer, err := s.users.Ref(order.Buyer.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Buyer = buyer

	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusPending
	order.Version = 0
	order.CreatedAt = now
	order.LastEdited = now
	if order.Billing.ID == "" {
		order.Billing.ID = uuid.NewString()
	}
	if order.Delivery.ID == "" {
		order.Delivery.ID = uuid.NewString()
	}

	stored, err := s.orders.Create(order)
	if err != nil {
		s.logger.WithError(err).WithField("buyer_id", order.Buyer.ID).Error("failed to create order")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}

	// Рендер и запись документа не откатывают уже сохранённый заказ:
	// заказ без документа лучше потерянного заказа.
	if doc, renderErr := s.renderAndAppend(stored); renderErr != nil {
		s.logger.WithError(renderErr).WithField("order_id", stored.ID).Warn("failed to render order document")
	} else {
		stored.LatestDocumentID = doc.ID
	}

	s.publishEvent(kafka.EventTypeOrderCreated, stored)

	s.logger.WithFields(log.Fields{
		"order_id":    stored.ID,
		"buyer_id":    stored.Buyer.ID,
		"total_price": stored.TotalPrice.String(),
	}).Info("order created")

	return stored, nil
}

func (s *service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	start := time.Now()
	defer s.observe("get", start)

	return s.orders.Get(orderID)
}

func (s *service) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	start := time.Now()
	defer s.observe("list_by_buyer", start)

	if _, err := s.users.Ref(buyerID); err != nil {
		return nil, err
	}
	return s.orders.ListByBuyer(buyerID)
}

// Update перезаписывает агрегат целиком: реквизиты, доставку,
// заголовок и полный набор позиций. Цена не перепроверяется.
func (s *service) Update(ctx context.Context, order domain.Order) (domain.Order, error) {
	start := time.Now()
	defer s.observe("update", start)

	if order.ID == "" {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if violations := order.ValidateInvariants(); len(violations) > 0 {
		return domain.Order{}, violations[0]
	}

	order.LastEdited = time.Now().UTC()
	if err := s.orders.Update(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to update order")
		return domain.Order{}, err
	}

	updated, err := s.orders.Get(order.ID)
	if err != nil {
		return domain.Order{}, err
	}

	s.publishEvent(kafka.EventTypeOrderUpdated, updated)

	return updated, nil
}

// Delete удаляет заказ со всеми составными записями и его документами.
func (s *service) Delete(ctx context.Context, orderID string) error {
	start := time.Now()
	defer s.observe("delete", start)

	order, err := s.orders.Get(orderID)
	if err != nil {
		return err
	}

	if err := s.orders.Delete(orderID); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to delete order")
		return err
	}

	// Документный журнал живёт отдельно от транзакции заказа.
	if removed, err := s.documents.DeleteByOrder(orderID); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to delete order documents")
	} else if removed > 0 {
		s.logger.WithFields(log.Fields{
			"order_id":  orderID,
			"documents": removed,
		}).Debug("order documents deleted")
	}

	if s.metrics != nil {
		s.metrics.RecordOrderDeleted(order.Status == domain.OrderStatusPending)
	}
	s.publishEvent(kafka.EventTypeOrderDeleted, order)

	s.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// Confirm переводит заказ в confirmed и возвращает свежесформированный
// документ. Повторное подтверждение — идемпотентный no-op: возвращается
// пустой документ, заказ не перезаписывается и не перерендеривается.
func (s *service) Confirm(ctx context.Context, userID, orderID string) (domain.OrderDocument, error) {
	start := time.Now()
	defer s.observe("confirm", start)

	if _, err := s.users.Ref(userID); err != nil {
		return domain.OrderDocument{}, err
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.OrderDocument{}, err
	}

	switch order.Status {
	case domain.OrderStatusCancelled:
		return domain.OrderDocument{}, domain.ErrOrderAlreadyCancelled
	case domain.OrderStatusConfirmed:
		return domain.OrderDocument{}, nil
	}

	order.Status = domain.OrderStatusConfirmed
	order.LastEdited = time.Now().UTC()
	if err := s.orders.Update(order); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to confirm order")
		return domain.OrderDocument{}, err
	}
	order.Version++

	if s.metrics != nil {
		s.metrics.RecordOrderConfirmed()
	}

	doc, renderErr := s.renderAndAppend(order)
	if renderErr != nil {
		s.logger.WithError(renderErr).WithField("order_id", orderID).Warn("failed to render confirmation document")
	}

	s.publishEvent(kafka.EventTypeOrderConfirmed, order)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  userID,
	}).Info("order confirmed")

	return doc, nil
}

// Cancel переводит заказ в cancelled и возвращает причину отмены.
// Подтверждённый заказ остаётся отменяемым, guard стоит только на
// повторной отмене.
func (s *service) Cancel(ctx context.Context, userID, orderID, reason string) (string, error) {
	start := time.Now()
	defer s.observe("cancel", start)

	if _, err := s.users.Ref(userID); err != nil {
		return "", err
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return "", err
	}

	if order.Status == domain.OrderStatusCancelled {
		return "", domain.ErrOrderAlreadyCancelled
	}

	wasPending := order.Status == domain.OrderStatusPending
	order.Status = domain.OrderStatusCancelled
	order.LastEdited = time.Now().UTC()
	if err := s.orders.Update(order); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to cancel order")
		return "", err
	}
	order.Version++

	if s.metrics != nil {
		s.metrics.RecordOrderCancelled(wasPending)
	}
	s.publishEvent(kafka.EventTypeOrderCancelled, order)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  userID,
		"reason":   reason,
	}).Info("order cancelled")

	return reason, nil
}

// renderAndAppend формирует документ заказа через внешний рендерер,
// записывает его в журнал и обновляет указатель latest_document_id.
func (s *service) renderAndAppend(order domain.Order) (domain.OrderDocument, error) {
	content, err := s.renderer.Render(order)
	if err != nil {
		return domain.OrderDocument{}, err
	}

	doc := domain.OrderDocument{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.documents.Append(doc); err != nil {
		return domain.OrderDocument{}, err
	}
	if err := s.orders.SetLatestDocument(order.ID, doc.ID); err != nil {
		// Журнал уже пополнен, устаревший указатель не фатален.
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to update latest document pointer")
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentRendered()
	}

	return doc, nil
}

// publishEvent кладёт событие жизненного цикла в transactional outbox.
func (s *service) publishEvent(eventType kafka.EventType, order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.NewOrderEvent(
		eventType,
		order.ID,
		order.Buyer.ID,
		string(order.Status),
		map[string]interface{}{
			"total_price": order.TotalPrice.String(),
		},
	))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal outbox event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("failed to enqueue outbox event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

func (s *service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

var _ Service = (*service)(nil)

// IsNotFound сообщает, является ли ошибка одной из not-found ошибок домена.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrOrderNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrItemNotFound) ||
		errors.Is(err, domain.ErrDocumentNotFound)
}
