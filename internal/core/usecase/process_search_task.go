package usecase

import (
	"context"
	"fmt"

	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"
	usecases_port "flatfox-parser-service/internal/core/port/usecases"

	"github.com/google/uuid"
)

// ProcessSearchTaskUseCase обрабатывает одну задачу на сканирование:
// получает объявления, отсекает уже виденные и запрещенные, публикует
// новые и отчитывается о результатах
type ProcessSearchTaskUseCase struct {
	source       port.ListingSourcePort
	pipeline     usecases_port.GetListingsPort
	knownRepo    port.KnownListingsPort
	queueRepo    port.ProcessedListingsQueuePort
	reporterRepo port.TaskReporterPort
}

// NewProcessSearchTaskUseCase создает новый экземпляр ProcessSearchTaskUseCase
func NewProcessSearchTaskUseCase(
	source port.ListingSourcePort,
	pipeline usecases_port.GetListingsPort,
	knownRepo port.KnownListingsPort,
	queueRepo port.ProcessedListingsQueuePort,
	reporterRepo port.TaskReporterPort,
) *ProcessSearchTaskUseCase {
	return &ProcessSearchTaskUseCase{
		source:       source,
		pipeline:     pipeline,
		knownRepo:    knownRepo,
		queueRepo:    queueRepo,
		reporterRepo: reporterRepo,
	}
}

// Execute запускает обработку задачи. Возвращенная ошибка означает,
// что задачу имеет смысл повторить (ретрай на уровне очереди).
func (uc *ProcessSearchTaskUseCase) Execute(ctx context.Context, searchURL string, taskID uuid.UUID) error {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "ProcessSearchTask",
		"source":   uc.source.Metadata().ID,
	})

	if !uc.source.Enabled() {
		ucLogger.Info("Source is disabled, skipping task", nil)
		return nil
	}

	// Задача может не нести свой URL: тогда сканируем по настроенной
	// ссылке источника
	var listings []domain.Listing
	if searchURL == "" {
		listings = uc.source.FetchListings(ctx)
	} else {
		listings = uc.pipeline.Execute(ctx, searchURL)
	}

	stats := &domain.ScanStats{ListingsFetched: len(listings)}

	// Нормализация и blacklist-фильтр
	accepted := make([]domain.Listing, 0, len(listings))
	for _, listing := range listings {
		normalized := uc.source.Normalize(listing)
		if !uc.source.Filter(normalized) {
			ucLogger.Debug("Listing rejected by blacklist", port.Fields{"link": normalized.Link})
			continue
		}
		accepted = append(accepted, normalized)
	}

	fingerprints := make([]string, 0, len(accepted))
	for _, listing := range accepted {
		fingerprints = append(fingerprints, listing.Fingerprint)
	}

	freshFingerprints, err := uc.knownRepo.FilterNew(ctx, fingerprints)
	if err != nil {
		ucLogger.Error("Failed to filter seen listings", err, nil)
		return fmt.Errorf("use case: failed to filter seen listings: %w", err)
	}

	freshSet := make(map[string]struct{}, len(freshFingerprints))
	for _, fp := range freshFingerprints {
		freshSet[fp] = struct{}{}
	}

	// Публикуем только новые; при сбое публикации запоминаем уже
	// опубликованные, чтобы ретрай задачи их не продублировал
	var publishErr error
	published := make([]string, 0, len(freshFingerprints))
	for _, listing := range accepted {
		if _, isFresh := freshSet[listing.Fingerprint]; !isFresh {
			continue
		}
		if err := uc.queueRepo.Enqueue(ctx, listing, taskID); err != nil {
			ucLogger.Error("Failed to enqueue listing, aborting publication", err, port.Fields{"fingerprint": listing.Fingerprint})
			publishErr = err
			break
		}
		published = append(published, listing.Fingerprint)
	}

	if err := uc.knownRepo.MarkSeen(ctx, published); err != nil {
		ucLogger.Error("Failed to mark listings as seen", err, nil)
		return fmt.Errorf("use case: failed to mark listings as seen: %w", err)
	}
	stats.ListingsNew = len(published)

	if publishErr != nil {
		return fmt.Errorf("use case: failed to publish listing: %w", publishErr)
	}

	if err := uc.reporterRepo.ReportResults(ctx, taskID, stats); err != nil {
		// Отчет не должен ронять задачу: данные уже опубликованы
		ucLogger.Warn("Failed to report task results", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Finished processing search task", port.Fields{
		"listings_fetched": stats.ListingsFetched,
		"listings_new":     stats.ListingsNew,
	})

	return nil
}
