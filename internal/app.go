package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"flatfox-parser-service/internal/adapters/flatfoxfetcher"
	logger_adapter "flatfox-parser-service/internal/adapters/logger"
	postgres_adapter "flatfox-parser-service/internal/adapters/postgres"
	rabbitmq_adapter "flatfox-parser-service/internal/adapters/rabbitmq"
	"flatfox-parser-service/internal/configs"
	"flatfox-parser-service/internal/constants"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"
	"flatfox-parser-service/internal/core/usecase"
	fluentlogger "flatfox-parser-service/pkg/fluent_logger"
	"flatfox-parser-service/pkg/postgres"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_common"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_consumer"
	"flatfox-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort

	// Входящие порты (слушатели событий)
	searchEventsListener port.EventListenerPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
	pkgLoggerBridge := rabbitmq_adapter.NewPkgLoggerBridge(producerLogger)

	connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
	connManager, err := rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, connManagerBridge)
	if err != nil {
		appLogger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	producerCfg := rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             "parser_exchange",
		ExchangeType:             "direct",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   pkgLoggerBridge,
	}
	eventProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
	if err != nil {
		appLogger.Error("Failed to create event producer", err, port.Fields{"url": appConfig.RabbitMQ.URL})
		dbPool.Close()
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	appLogger.Info("RabbitMQ Event Producer initialized.", nil)

	flatfoxAdapter, err := flatfoxfetcher.NewFlatfoxFetcherAdapter(
		constants.APIBaseURL,
		time.Duration(appConfig.Flatfox.RequestDelayMs)*time.Millisecond,
	)
	if err != nil {
		appLogger.Error("Failed to create Flatfox Fetcher Adapter", err, nil)
		eventProducer.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to initialize flatfox fetcher: %w", err)
	}
	appLogger.Info("Flatfox Fetcher Adapter initialized.", nil)

	knownListingsRepo, err := postgres_adapter.NewKnownListingsAdapter(dbPool)
	if err != nil {
		eventProducer.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to initialize known listings adapter: %w", err)
	}

	tasksResultsQueueAdapter, _ := rabbitmq_adapter.NewTaskReporterAdapter(eventProducer, constants.RoutingKeyTaskResults)
	processedListingsQueueAdapter, _ := rabbitmq_adapter.NewProcessedListingsQueueAdapter(eventProducer, constants.RoutingKeyProcessedProperties)

	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- 4. USE CASES (ядро бизнес-логики) ---
	blacklist := domain.NewBlacklist(appConfig.Blacklist)

	getListingsUseCase := usecase.NewGetListingsUseCase(flatfoxAdapter)
	flatfoxSource := usecase.NewFlatfoxSource(
		domain.SourceSettings{
			Enabled: appConfig.Flatfox.Enabled,
			URL:     appConfig.Flatfox.SearchURL,
		},
		blacklist,
		getListingsUseCase,
	)
	processSearchTaskUseCase := usecase.NewProcessSearchTaskUseCase(
		flatfoxSource,
		getListingsUseCase,
		knownListingsRepo,
		processedListingsQueueAdapter,
		tasksResultsQueueAdapter,
	)
	appLogger.Info("All use cases initialized.", nil)

	// --- 5. ВХОДЯЩИЕ АДАПТЕРЫ (те, которые ВЫЗЫВАЮТ наше ядро) ---
	tasksConsumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:           constants.QueueSearchTasks,
		RoutingKeyForBind:   constants.RoutingKeySearchTasks,
		ExchangeNameForBind: "parser_exchange",
		PrefetchCount:       1,
		DurableQueue:        true,
		ConsumerTag:         "flatfox-search-tasks-adapter",
		DeclareQueue:        true,

		// Включаем механизм ретраев
		EnableRetryMechanism: true,

		// Сателлиты для этой конкретной очереди.
		// Используем имя основной очереди как префикс для уникальности.
		RetryExchange: constants.QueueSearchTasks + "_retry_ex",
		RetryQueue:    constants.QueueSearchTasks + "_retry_wait_10s",
		RetryTTL:      10000, // 10 секунд в миллисекундах

		// Общая "свалка" для сообщений, исчерпавших все попытки.
		FinalDLXExchange:   constants.FinalDLXExchangeForSearchTasks,
		FinalDLQ:           constants.FinalDLQForSearchTasks,
		FinalDLQRoutingKey: constants.FinalDLQRoutingKeyForSearchTasks,

		// Количество ретраев (помимо первой попытки).
		MaxRetries: 3,
	}
	searchTasksListener, err := rabbitmq_adapter.NewTasksConsumerAdapter(tasksConsumerCfg, processSearchTaskUseCase, baseLogger, connManager)
	if err != nil {
		appLogger.Error("Failed to initialize Search Events Listener", err, nil)
		eventProducer.Close()
		dbPool.Close()
		return nil, err
	}
	appLogger.Info("Search Events Listener initialized.", nil)

	// --- 6. Собираем приложение ---
	application := &App{
		config:               appConfig,
		dbPool:               dbPool,
		connManager:          connManager,
		fluentClient:         fluentClient,
		logger:               appLogger,
		eventProducer:        eventProducer,
		searchEventsListener: searchTasksListener,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Ждем завершения всех запущенных горутин (слушателей)
		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		// Теперь безопасно закрываем ресурсы
		if a.searchEventsListener != nil {
			if err := a.searchEventsListener.Close(); err != nil {
				a.logger.Error("Error closing search tasks listener", err, nil)
			}
		}
		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}

		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			a.logger.Info("Closing Fluent Bit connection...", nil)
			if err := a.fluentClient.Close(); err != nil {
				log.Printf("App: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	consumerErrors := make(chan error, 1)

	// Функция-хелпер для запуска слушателей
	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			consumerErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	wg.Add(1)
	go startListener("Search Events Listener", a.searchEventsListener)

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or consumer error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-consumerErrors:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
