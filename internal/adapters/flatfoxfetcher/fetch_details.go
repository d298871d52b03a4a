package flatfoxfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"flatfox-parser-service/internal/constants"
	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// detailEnvelope - public-listing эндпоинт исторически отдавал детали то
// голым массивом, то объектом {"results": [...]}. Разбираем оба варианта.
type detailEnvelope struct {
	Results []apiListing `json:"results"`
}

// FetchDetails извлекает детали объявлений по их идентификаторам.
// Идентификаторы запрашиваются батчами: сбой одного батча логируется и
// пропускается, остальные батчи обрабатываются дальше. Пустой список
// идентификаторов не порождает ни одного HTTP запроса.
func (a *FlatfoxFetcherAdapter) FetchDetails(ctx context.Context, pins []domain.ListingPin) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchDetailsLogger := logger.WithFields(port.Fields{"component": "FlatfoxFetcherAdapter(FetchDetails)"})

	if len(pins) == 0 {
		return nil, nil
	}

	var listings []domain.Listing
	failedBatches := 0

	for start := 0; start < len(pins); start += constants.DetailBatchSize {
		end := start + constants.DetailBatchSize
		if end > len(pins) {
			end = len(pins)
		}
		batch := pins[start:end]

		batchListings, err := a.fetchDetailBatch(ctx, batch, fetchDetailsLogger)
		if err != nil {
			// Сбойный батч не роняет весь проход: теряем только его объявления
			fetchDetailsLogger.Warn("Detail batch failed, skipping", port.Fields{
				"batch_start": start,
				"batch_size":  len(batch),
				"error":       err.Error(),
			})
			failedBatches++
			continue
		}
		listings = append(listings, batchListings...)
	}

	fetchDetailsLogger.Info("Finished fetching details", port.Fields{
		"pins_total":     len(pins),
		"listings_built": len(listings),
		"failed_batches": failedBatches,
	})

	return listings, nil
}

// buildDetailURL собирает URL запроса деталей для одного батча
// идентификаторов. limit=0 отключает пагинацию на стороне flatfox,
// expand=cover_image разворачивает картинку обложки в объект.
func (a *FlatfoxFetcherAdapter) buildDetailURL(batch []domain.ListingPin) (string, error) {
	u, err := url.Parse(a.baseURL + "/public-listing/")
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("expand", "cover_image")
	q.Set("limit", "0")
	for _, pin := range batch {
		q.Add("pk", strconv.FormatInt(pin.PK, 10))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *FlatfoxFetcherAdapter) fetchDetailBatch(ctx context.Context, batch []domain.ListingPin, logger port.LoggerPort) ([]domain.Listing, error) {
	// Клон на каждый батч: наследует лимиты (в том числе задержку между
	// запросами), но имеет свои собственные обработчики
	collector := a.collector.Clone()

	var batchListings []domain.Listing
	var responseErr error

	targetURL, err := a.buildDetailURL(batch)
	if err != nil {
		return nil, fmt.Errorf("flatfox adapter: failed to build detail URL: %w", err)
	}

	collector.OnRequest(func(r *colly.Request) {
		logger.Debug("Making request to fetch listing details", port.Fields{
			"url":        r.URL.String(),
			"batch_size": len(batch),
		})
	})

	collector.OnResponse(func(r *colly.Response) {
		records, jsonErr := decodeDetailResponse(r.Body)
		if jsonErr != nil {
			responseErr = fmt.Errorf("FlatfoxAdapter: failed to parse detail response from %s: %w", r.Request.URL.String(), jsonErr)
			return
		}

		for _, record := range records {
			listing, ok := toListing(record, logger)
			if !ok {
				// Непригодная запись отбрасывается, остальной батч не страдает
				continue
			}
			batchListings = append(batchListings, listing)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		logger.Error("Failed to fetch listing details", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		if r.StatusCode > 0 {
			responseErr = &domain.UpstreamError{StatusCode: r.StatusCode}
			return
		}
		responseErr = &domain.TransportError{Err: err}
	})

	visitErr := collector.Visit(targetURL)
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	if visitErr != nil {
		return nil, &domain.TransportError{Err: visitErr}
	}

	return batchListings, nil
}

func decodeDetailResponse(body []byte) ([]apiListing, error) {
	var records []apiListing
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}
