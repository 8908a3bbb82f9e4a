// Package kafka publica los eventos de gobernanza (ejecuciones NOTIFY y
// rollbacks) para los consumidores de visibilidad: dashboards, alertas,
// integraciones de mensajería.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/logger"
)

var _ execution.Notifier = (*Notifier)(nil)

// Notifier publicador de eventos sobre Kafka. La entrega es confirmada por
// mensaje (delivery channel); el caller decide qué hacer con el error.
type Notifier struct {
	producer *ckafka.Producer
	topic    string
	log      *logger.Logger
}

// NewNotifier crea el productor. bootstrapServers en formato host:port[,host:port].
func NewNotifier(bootstrapServers, topic string, log *logger.Logger) (*Notifier, error) {
	p, err := ckafka.NewProducer(&ckafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Str("topic", topic).Msg("productor de eventos de gobernanza listo")
	return &Notifier{producer: p, topic: topic, log: log}, nil
}

// Notify publica el evento con el execution_id como key (orden por partición
// estable para un mismo id).
func (n *Notifier) Notify(ctx context.Context, event execution.NotifyEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	deliveryChan := make(chan ckafka.Event, 1)
	defer close(deliveryChan)

	err = n.producer.Produce(&ckafka.Message{
		TopicPartition: ckafka.TopicPartition{Topic: &n.topic, Partition: ckafka.PartitionAny},
		Key:            []byte(event.ExecutionID),
		Value:          payload,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("producir mensaje: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*ckafka.Message)
		if !ok {
			return fmt.Errorf("evento de entrega inesperado: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("entrega fallida: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("timeout de entrega")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drena y cierra el productor.
func (n *Notifier) Close() {
	n.log.Info().Msg("cerrando productor de eventos de gobernanza...")
	n.producer.Flush(15 * 1000)
	n.producer.Close()
}
