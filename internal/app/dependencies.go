package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
	"github.com/vladislavdragonenkov/marketplace/internal/service/recommend"
	"github.com/vladislavdragonenkov/marketplace/internal/service/renderer"
	"github.com/vladislavdragonenkov/marketplace/internal/service/sales"
)

// Services — собранные прикладные сервисы маркетплейса. Транспортный слой
// (gRPC, HTTP, очередь задач) живёт вне этого модуля и получает Services
// через ServeFunc в Run.
type Services struct {
	Orders    orders.Service
	Sales     sales.Service
	Recommend recommend.Service

	// Репозитории пользователей и товаров отдаются транспорту напрямую:
	// их CRUD не несёт доменной логики поверх хранилища.
	Users domain.UserRepository
	Items domain.ItemRepository
}

// newServices связывает репозитории с сервисами поверх общего рендерера.
func newServices(deps *runtimeDependencies, logger *log.Entry) Services {
	docRenderer := renderer.NewUBLRenderer()

	return Services{
		Orders: orders.NewService(
			deps.orders,
			deps.users,
			deps.documents,
			deps.outbox,
			docRenderer,
			logger.WithField("component", "orders"),
		),
		Sales:     sales.NewService(deps.sales, deps.users, logger.WithField("component", "sales")),
		Recommend: recommend.NewService(deps.sales, deps.users, logger.WithField("component", "recommend")),
		Users:     deps.users,
		Items:     deps.items,
	}
}
