package sales

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

// Service отдаёт агрегированную статистику продаж для отчётности.
type Service interface {
	// SellerSales возвращает продажи каждого товара продавца,
	// включая товары с нулём продаж.
	SellerSales(ctx context.Context, sellerID string) ([]domain.ItemSales, error)
	// PopularItems возвращает топ товаров по проданному количеству.
	// Товары без продаж не попадают в выдачу.
	PopularItems(ctx context.Context, limit int) ([]domain.Item, error)
}

type service struct {
	sales   domain.SalesRepository
	users   domain.UserRepository
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService создаёт сервис отчётов по продажам.
func NewService(sales domain.SalesRepository, users domain.UserRepository, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &service{
		sales:   sales,
		users:   users,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(sales domain.SalesRepository, users domain.UserRepository, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &service{
		sales:  sales,
		users:  users,
		logger: logger,
	}
}

func (s *service) SellerSales(ctx context.Context, sellerID string) ([]domain.ItemSales, error) {
	start := time.Now()
	defer s.observe("seller_sales", start)

	if _, err := s.users.Ref(sellerID); err != nil {
		return nil, err
	}

	return s.sales.SellerSales(sellerID)
}

func (s *service) PopularItems(ctx context.Context, limit int) ([]domain.Item, error) {
	start := time.Now()
	defer s.observe("popular_items", start)

	if limit <= 0 {
		return nil, domain.ErrLimitInvalid
	}

	return s.sales.PopularItems(limit)
}

func (s *service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

var _ Service = (*service)(nil)
