package app

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/marketplace/internal/health"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
	"github.com/vladislavdragonenkov/marketplace/internal/service/outbox"
	"github.com/vladislavdragonenkov/marketplace/internal/version"
)

// ServeFunc получает собранные сервисы и обслуживает их до отмены ctx.
// Возврат из ServeFunc (с ошибкой или без) останавливает приложение;
// так транспортный слой, живущий вне модуля, встраивается в Run.
type ServeFunc func(ctx context.Context, services Services) error

// Run собирает зависимости и держит приложение до отмены ctx: хранилище,
// прикладные сервисы, outbox worker (при настроенной Kafka), HTTP-сервер
// метрик и health checks. serve может быть nil — тогда процесс работает
// как relay: публикует накопленные outbox-события и отдаёт метрики.
func Run(ctx context.Context, cfg Config, serve ServeFunc) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	// Ошибка создания producer уже залогирована: работаем без Kafka,
	// события копятся в outbox.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafkaProducer(producer, logger)

	buildVersion, _, _ := version.Info()
	healthHandler := health.NewHandler(buildVersion)
	if deps.storageChecker != nil {
		healthHandler.Register("storage", deps.storageChecker)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	metricsSrv := startMetricsServer(gctx, cfg.MetricsAddr, logger, healthHandler)

	if producer != nil {
		worker := outbox.NewWorker(
			deps.outbox,
			kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})

		// Обратный канал: при заданной consumer group сервис читает
		// собственный топик событий для учёта доставленного.
		handler := newOrderEventHandler(logger.WithField("component", "event-consumer"), metrics.NewEventMetrics())
		consumer, consumerErr := initEventConsumer(cfg, producer, handler, logger)
		if consumerErr == nil && consumer != nil {
			if startErr := consumer.Start(gctx); startErr != nil {
				logger.WithError(startErr).Warn("failed to start order event consumer")
			} else {
				g.Go(func() error {
					<-gctx.Done()
					stopEventConsumer(consumer, logger)
					return gctx.Err()
				})
			}
		}
	} else {
		logger.Info("kafka brokers are not configured, outbox worker is disabled")
	}

	if serve != nil {
		services := newServices(deps, logger)
		g.Go(func() error {
			defer cancel()
			return serve(gctx, services)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	logger.WithFields(log.Fields{
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("marketplace service started")

	err = g.Wait()
	shutdownHTTP(metricsSrv, logger)

	// serve завершился сам, внешней отмены не было.
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return err
}
