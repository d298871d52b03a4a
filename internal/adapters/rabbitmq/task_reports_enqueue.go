package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TaskResultDTO - для сообщения в очередь результатов
type TaskResultDTO struct {
	TaskID  uuid.UUID      `json:"task_id"`
	Results map[string]int `json:"results"`
}

type TaskReporterAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewTaskReporterAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*TaskReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &TaskReporterAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// ReportResults публикует итоги сканирования по задаче
func (a *TaskReporterAdapter) ReportResults(ctx context.Context, taskID uuid.UUID, stats *domain.ScanStats) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "TaskReporterAdapter",
		"routing_key": a.routingKey,
	})

	dto := TaskResultDTO{
		TaskID: taskID,
		Results: map[string]int{
			"listings_fetched": stats.ListingsFetched,
			"listings_new":     stats.ListingsNew,
		},
	}

	body, _ := json.Marshal(dto)

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Для сохранения сообщений при перезапуске брокера
		Timestamp:    time.Now(),
		Headers:      make(amqp.Table),
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	adapterLogger.Info("Publishing report for task", nil)
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish report for task", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish report for task %s: %w", taskID, err)
	}

	adapterLogger.Info("Successfully published report for task", nil)
	return nil
}
