// Package events publishes analysis outcomes to Kafka for downstream
// automation (task creation, client communication). Publishing is
// fire-and-forget from the analysis path: failures are logged, never
// surfaced to the caller.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Publisher wraps a sarama sync producer for analytics events.
type Publisher struct {
	producer       sarama.SyncProducer
	alertsTopic    string
	anomaliesTopic string
	log            *logger.Logger
}

// envelope is the wire shape for every published event.
type envelope struct {
	EventID   uuid.UUID   `json:"event_id"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewPublisher creates a publisher connected to the configured brokers.
func NewPublisher(cfg *config.KafkaConfig, log *logger.Logger) (*Publisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		producer:       producer,
		alertsTopic:    cfg.AlertsTopic,
		anomaliesTopic: cfg.AnomaliesTopic,
		log:            log.Named("events"),
	}, nil
}

// PublishAlerts sends one event per KPI alert.
func (p *Publisher) PublishAlerts(alerts []domain.KPIAlert) {
	for _, alert := range alerts {
		p.publish(p.alertsTopic, alert.KPIID, "analytics.kpi.alert", alert)
	}
}

// PublishAnomalies sends one event per detected anomaly.
func (p *Publisher) PublishAnomalies(anomalies []domain.DetectedAnomaly) {
	for _, anomaly := range anomalies {
		p.publish(p.anomaliesTopic, anomaly.ID.String(), "analytics.anomaly.detected", anomaly)
	}
}

func (p *Publisher) publish(topic, key, eventType string, payload interface{}) {
	body, err := json.Marshal(envelope{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		p.log.Warn("event marshal failed", logger.ErrorField(err))
		return
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		p.log.Warn("event publish failed",
			logger.StringField("topic", topic),
			logger.ErrorField(err),
		)
	}
}

// Close shuts down the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
