package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/contracts"
	"flatfox-parser-service/internal/core/port"
	usecases_port "flatfox-parser-service/internal/core/port/usecases"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_common"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	searchTaskEventType    = "SearchTaskEvent"
	searchTaskEventVersion = "1.0.0"
)

// TasksConsumerAdapter слушает очередь задач на сканирование и передает
// их в use case обработки
type TasksConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	taskUC   usecases_port.ProcessSearchTaskPort
	logger   port.LoggerPort
}

func NewTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	taskUC usecases_port.ProcessSearchTaskPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*TasksConsumerAdapter, error) {

	adapter := &TasksConsumerAdapter{
		taskUC: taskUC,
		logger: logger,
	}

	// Создаем логгер для pkg-уровня с контекстом нашего компонента
	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	// Создаем мост и передаем его в конфиг
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for search tasks: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// messageHandler - приватный метод адаптера
func (a *TasksConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	// Создаем логгер для этого конкретного сообщения
	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	// Создаем контекст и кладем в него логгер
	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	msgLogger.Info("Received new search task", nil)

	eventType, eventVersion := eventMetadata(d)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Search task failed schema validation, dropping message", err, nil)
		// Контрактная ошибка постоянна: повтор обработки не поможет
		return nil
	}

	var taskDTO SearchTaskDTO
	if err := json.Unmarshal(d.Body, &taskDTO); err != nil {
		msgLogger.Error("Error unmarshalling task DTO, dropping message", err, nil)
		return nil
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": taskDTO.TaskID.String()})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)

	if err := a.taskUC.Execute(ctx, taskDTO.SearchURL, taskDTO.TaskID); err != nil {
		taskLogger.Error("Search task use case failed", err, nil)
		return err // Возвращаем ошибку для retry
	}

	return nil
}

// eventMetadata извлекает тип и версию события из заголовков. Старые
// публикаторы заголовки не ставили, для них действуют значения по умолчанию.
func eventMetadata(d amqp.Delivery) (string, string) {
	eventType, ok := d.Headers["event-type"].(string)
	if !ok || eventType == "" {
		eventType = searchTaskEventType
	}
	eventVersion, ok := d.Headers["event-version"].(string)
	if !ok || eventVersion == "" {
		eventVersion = searchTaskEventVersion
	}
	return eventType, eventVersion
}

// Start реализует EventListenerPort
func (a *TasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *TasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}
