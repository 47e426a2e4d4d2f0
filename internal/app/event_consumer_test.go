package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

func orderEventMessage(t *testing.T, eventType kafka.EventType) *sarama.ConsumerMessage {
	t.Helper()

	payload, err := json.Marshal(kafka.OrderEvent{
		EventType: eventType,
		OrderID:   "order-1",
		BuyerID:   "buyer-1",
		Status:    "pending",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal order event: %v", err)
	}
	return &sarama.ConsumerMessage{
		Topic: kafka.TopicOrderEvents,
		Key:   []byte("order-1"),
		Value: payload,
	}
}

func TestNewOrderEventHandler_ValidEvent(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	handler := newOrderEventHandler(logger.WithField("component", "test"), metrics.NewEventMetrics())

	msg := orderEventMessage(t, kafka.EventTypeOrderCreated)
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("handler failed on valid event: %v", err)
	}
}

func TestNewOrderEventHandler_MalformedPayload(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	handler := newOrderEventHandler(logger.WithField("component", "test"), metrics.NewEventMetrics())

	msg := &sarama.ConsumerMessage{
		Topic: kafka.TopicOrderEvents,
		Value: []byte("not json"),
	}
	// Ошибка обязана дойти до вызывающего: retry/DLQ-путь consumer'а
	// включается только при ненулевом результате.
	if err := handler(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed event payload")
	}
}

func TestInitEventConsumer_DisabledWithoutGroup(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)

	cfg := DefaultConfig()
	cfg.KafkaBrokers = "localhost:9092"
	cfg.KafkaConsumerGroup = ""

	consumer, err := initEventConsumer(cfg, nil, nil, logger.WithField("component", "test"))
	if err != nil {
		t.Fatalf("disabled consumer must not error: %v", err)
	}
	if consumer != nil {
		t.Fatal("expected nil consumer without a consumer group")
	}
}

func TestInitEventConsumer_UnreachableBroker(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	cfg := DefaultConfig()
	cfg.KafkaBrokers = "invalid-broker:9999"
	cfg.KafkaConsumerGroup = "marketplace-events"

	handler := newOrderEventHandler(logger.WithField("component", "test"), metrics.NewEventMetrics())
	consumer, err := initEventConsumer(cfg, nil, handler, logger.WithField("component", "test"))
	if err == nil {
		t.Fatal("expected error for unreachable broker")
	}
	if consumer != nil {
		t.Fatal("expected nil consumer on error")
	}
}

func TestStopEventConsumer_Nil(t *testing.T) {
	stopEventConsumer(nil, log.WithField("component", "test"))
}
