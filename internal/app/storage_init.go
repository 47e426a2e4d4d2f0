package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/health"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/postgres"
)

// runtimeDependencies — набор репозиториев, собранный под выбранный
// storage driver, плюс health checker и функция закрытия хранилища.
type runtimeDependencies struct {
	users     domain.UserRepository
	items     domain.ItemRepository
	orders    domain.OrderRepository
	documents domain.DocumentRepository
	sales     domain.SalesRepository
	outbox    domain.OutboxRepository

	storageChecker health.Checker
	closeFn        func() error
}

// initRuntimeDependencies создаёт репозитории поверх выбранного хранилища.
// Для postgres требуется DSN; при PostgresAutoMigrate применяются миграции.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			users:     memory.NewUserRepository(store),
			items:     memory.NewItemRepository(store),
			orders:    memory.NewOrderRepository(store),
			documents: memory.NewDocumentRepository(store),
			sales:     memory.NewSalesRepository(store),
			outbox:    memory.NewOutboxRepository(store),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires MARKET_POSTGRES_DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("init postgres storage: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}

		logger.Info("using postgres storage")
		return &runtimeDependencies{
			users:          postgres.NewUserRepository(store),
			items:          postgres.NewItemRepository(store),
			orders:         postgres.NewOrderRepository(store),
			documents:      postgres.NewDocumentRepository(store),
			sales:          postgres.NewSalesRepository(store),
			outbox:         postgres.NewOutboxRepository(store),
			storageChecker: health.NewPingChecker("postgres", 0, store.Ping),
			closeFn:        store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

// close освобождает ресурсы хранилища, если оно их держит.
func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}
