package queue

import (
	"github.com/rabbitmq/amqp091-go"

	"github.com/tagexplorer/backend/pkg/logger"
)

// MaxRetries is the number of retries before a message goes to the DLQ.
const MaxRetries = 10

const retriesHeader = "x-retries"

type rawPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// HandleProcessingError sends a failed message to the retry queue, or to
// the dead-letter queue once MaxRetries is reached. The original delivery is
// acked after the copy is published and requeued when publishing fails.
func HandleProcessingError(ch rawPublisher, msg amqp091.Delivery, queueName string) {
	retries := RetryCount(msg.Headers)

	target := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if retries >= MaxRetries {
		target = queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", target)
	} else {
		headers[retriesHeader] = int32(retries + 1)
	}

	pubErr := ch.Publish(
		"",
		target,
		false,
		false,
		amqp091.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			Headers:      headers,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", pubErr)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}

// RetryCount reads the retry header, which arrives with varying integer
// types depending on the publisher.
func RetryCount(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	default:
		return 0
	}
}
