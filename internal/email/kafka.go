package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Abdul-Aziz026/school-auth/internal/config"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

var _ model.EmailDispatcher = (*KafkaDispatcher)(nil)

// KafkaDispatcher publishes email commands to the delivery topic. The
// message key is the recipient address, so retries for one mailbox
// stay ordered.
type KafkaDispatcher struct {
	writer        *kafka.Writer
	topic         string
	senderName    string
	senderAddress string
}

func NewKafkaDispatcher(brokers []string, topic string, sender config.Email) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaDispatcher{
		writer:        w,
		topic:         topic,
		senderName:    sender.SenderName,
		senderAddress: sender.SenderAddress,
	}
}

func (d *KafkaDispatcher) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	cmd := Command{
		SenderName:    d.senderName,
		SenderAddress: d.senderAddress,
		ToAddress:     toAddress,
		ToName:        toName,
		Subject:       subject,
		HTMLBody:      htmlBody,
		EnqueuedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal email command: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(toAddress),
		Value: data,
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish email command: %w", err)
	}
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
