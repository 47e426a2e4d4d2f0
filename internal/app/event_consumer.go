package app

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

// consumerMaxRetries — число in-process попыток обработать событие до
// отправки в DLQ.
const consumerMaxRetries = 3

// newOrderEventHandler возвращает обработчик событий заказов: событие
// парсится, учитывается в метриках и логируется. Невалидный payload
// возвращает ошибку, чтобы сообщение после retry ушло в DLQ, а не
// потерялось молча.
func newOrderEventHandler(logger *log.Entry, eventMetrics *metrics.EventMetrics) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		event, err := kafka.ParseOrderEvent(message)
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"topic":  message.Topic,
				"offset": message.Offset,
			}).Warn("failed to parse order event")
			return err
		}

		eventMetrics.RecordEventConsumed(string(event.EventType))
		logger.WithFields(log.Fields{
			"event_type": event.EventType,
			"order_id":   event.OrderID,
			"status":     event.Status,
		}).Debug("order event consumed")
		return nil
	}
}

// initEventConsumer создаёт consumer топика событий заказов. Чтение
// включается только при заданной consumer group: по умолчанию процесс
// относительно Kafka write-only.
func initEventConsumer(cfg Config, dlqProducer *kafka.Producer, handler kafka.MessageHandler, logger *log.Entry) (*kafka.Consumer, error) {
	if strings.TrimSpace(cfg.KafkaConsumerGroup) == "" {
		return nil, nil
	}

	consumer, err := kafka.NewConsumerWithDLQ(
		splitBrokers(cfg.KafkaBrokers),
		cfg.KafkaConsumerGroup,
		[]string{kafka.TopicOrderEvents},
		handler,
		dlqProducer,
		consumerMaxRetries,
	)
	if err != nil {
		logger.WithError(err).Warn("failed to create order event consumer, continuing without it")
		return nil, err
	}

	logger.WithField("group", cfg.KafkaConsumerGroup).Info("order event consumer initialized")
	return consumer, nil
}

// stopEventConsumer останавливает consumer, если он был создан.
func stopEventConsumer(consumer *kafka.Consumer, logger *log.Entry) {
	if consumer == nil {
		return
	}

	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop order event consumer")
	} else {
		logger.Info("order event consumer stopped")
	}
}
