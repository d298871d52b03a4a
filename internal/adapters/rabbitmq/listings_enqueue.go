package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flatfox-parser-service/internal/constants"
	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ProcessedListingsQueueAdapter отправляет обработанные объявления
// сервису хранения
type ProcessedListingsQueueAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewProcessedListingsQueueAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*ProcessedListingsQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ProcessedListingsQueueAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// Enqueue публикует одно объявление в очередь обработанных объектов
func (a *ProcessedListingsQueueAdapter) Enqueue(ctx context.Context, listing domain.Listing, taskID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "ProcessedListingsQueueAdapter",
		"routing_key": a.routingKey,
	})

	eventDTO := toListingEventDTO(listing, taskID)

	body, err := json.Marshal(eventDTO)
	if err != nil {
		adapterLogger.Error("Failed to marshal listing to JSON", err, nil)
		return fmt.Errorf("failed to marshal listing %s to JSON: %w", listing.Link, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Для сохранения сообщений при перезапуске брокера
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    "ProcessedListingEvent", // Название события из схемы
			"event-version": "1.0.0",                 // Версия из схемы
		},
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish processed listing", err, port.Fields{"fingerprint": listing.Fingerprint})
		return err
	}

	adapterLogger.Info("Successfully published processed listing", port.Fields{"fingerprint": listing.Fingerprint})
	return nil
}

func toListingEventDTO(listing domain.Listing, taskID uuid.UUID) ProcessedListingEventDTO {
	return ProcessedListingEventDTO{
		Source:          constants.SourceID,
		SourceListingID: listing.SourceID,
		Fingerprint:     listing.Fingerprint,

		Title:       listing.Title,
		Price:       listing.Price,
		Size:        listing.Size,
		Link:        listing.Link,
		Description: listing.Description,
		Address:     listing.Address,
		Image:       listing.Image,

		PriceValue: listing.PriceValue,
		RoomsCount: listing.RoomsCount,

		TaskID: taskID,
	}
}
