package recommend

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

// Service подбирает товары покупателю по его истории покупок.
type Service interface {
	// Recommend возвращает до limit товаров без дублей; дубликатом
	// считается пара (имя товара в нижнем регистре, id продавца).
	Recommend(ctx context.Context, buyerID string, limit int) ([]domain.Item, error)
}

type service struct {
	sales   domain.SalesRepository
	users   domain.UserRepository
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService создаёт рекомендательный сервис.
func NewService(sales domain.SalesRepository, users domain.UserRepository, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "recommend")
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
		logger = log.New().WithField("component", "recommend")
	}
	return &service{
		sales:  sales,
		users:  users,
		logger: logger,
	}
}

// Recommend работает в две фазы. Сначала по истории: для каждого из
// топ-продавцов покупателя берётся его самый продаваемый товар, имя
// которого пересекается со словарём купленных покупателем товаров.
// Добор до limit идёт из глобального рейтинга популярности.
func (s *service) Recommend(ctx context.Context, buyerID string, limit int) ([]domain.Item, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordRecommendDuration(time.Since(start))
		}
	}()

	if limit <= 0 {
		return nil, domain.ErrLimitInvalid
	}
	if _, err := s.users.Ref(buyerID); err != nil {
		return nil, err
	}

	result := make([]domain.Item, 0, limit)
	seen := make(map[recommendationKey]struct{}, limit)

	historical, err := s.historyCandidates(buyerID, limit)
	if err != nil {
		return nil, err
	}
	for _, item := range historical {
		key := keyOf(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
		if len(result) == limit {
			return result, nil
		}
	}

	// Истории не хватило: добираем из глобального топа в порядке
	// популярности, пропуская уже предложенное.
	popular, err := s.sales.PopularItems(limit)
	if err != nil {
		return nil, err
	}
	for _, item := range popular {
		key := keyOf(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
		if len(result) == limit {
			break
		}
	}

	return result, nil
}

// historyCandidates собирает кандидатов первой фазы: по одному товару
// на продавца, в порядке рейтинга продавцов покупателя.
func (s *service) historyCandidates(buyerID string, limit int) ([]domain.Item, error) {
	sellerRank, err := s.sales.TopSellers(buyerID, limit)
	if err != nil {
		return nil, err
	}
	if len(sellerRank) == 0 {
		return nil, nil
	}

	keywords, err := s.purchasedKeywords(buyerID)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	candidates := make([]domain.Item, 0, len(sellerRank))
	for _, seller := range sellerRank {
		items, err := s.sales.SellerItemsBySales(seller.SellerID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if nameMatchesAny(item.Name, keywords) {
				candidates = append(candidates, item)
				break
			}
		}
		if len(candidates) == limit {
			break
		}
	}
	return candidates, nil
}

// purchasedKeywords строит словарь из имён всех когда-либо купленных
// покупателем товаров: нижний регистр, разбивка по пробелам.
func (s *service) purchasedKeywords(buyerID string) ([]string, error) {
	names, err := s.sales.PurchasedItemNames(buyerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	keywords := make([]string, 0, len(names))
	for _, name := range names {
		for _, word := range strings.Fields(strings.ToLower(name)) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			keywords = append(keywords, word)
		}
	}
	return keywords, nil
}

func nameMatchesAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

type recommendationKey struct {
	name     string
	sellerID string
}

func keyOf(item domain.Item) recommendationKey {
	return recommendationKey{
		name:     strings.ToLower(item.Name),
		sellerID: item.Seller.ID,
	}
}

var _ Service = (*service)(nil)
