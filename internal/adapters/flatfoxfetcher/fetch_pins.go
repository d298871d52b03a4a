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

type pinItem struct {
	PK int64 `json:"pk"`
}

// buildPinURL собирает URL pin-эндпоинта из поисковых параметров.
// Копируются только распознанные ключи; max_count всегда форсируется
// до потолка, значение вызывающего игнорируется.
func (a *FlatfoxFetcherAdapter) buildPinURL(params domain.SearchParams) (string, error) {
	u, err := url.Parse(a.baseURL + "/pin/")
	if err != nil {
		return "", err
	}

	q := u.Query()
	for _, key := range constants.RecognizedPinParams {
		if value, ok := params[key]; ok {
			q.Set(key, value)
		}
	}
	q.Set("max_count", strconv.Itoa(constants.MaxPinCount))

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPins запрашивает у pin-эндпоинта идентификаторы объявлений,
// попадающих в границы поиска
func (a *FlatfoxFetcherAdapter) FetchPins(ctx context.Context, params domain.SearchParams) ([]domain.ListingPin, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchPinsLogger := logger.WithFields(port.Fields{"component": "FlatfoxFetcherAdapter(FetchPins)"})

	// Создаем "одноразовый" клон для этого конкретного запроса
	// Он наследует лимиты, но имеет свои собственные обработчики!
	collector := a.collector.Clone()

	var fetchedPins []domain.ListingPin
	var responseErr error // Для хранения ошибки из колбэка

	targetURL, err := a.buildPinURL(params)
	if err != nil {
		return nil, fmt.Errorf("flatfox adapter: failed to build pin URL: %w", err)
	}

	collector.OnRequest(func(r *colly.Request) {
		fetchPinsLogger.Debug("Making request to fetch pins", port.Fields{
			"url": r.URL.String(),
		})
	})

	collector.OnResponse(func(r *colly.Response) {
		var data []pinItem
		if jsonErr := json.Unmarshal(r.Body, &data); jsonErr != nil {
			responseErr = fmt.Errorf("FlatfoxAdapter: failed to parse pin response from %s: %w", r.Request.URL.String(), jsonErr)
			return
		}

		for _, pin := range data {
			fetchedPins = append(fetchedPins, domain.ListingPin{PK: pin.PK})
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchPinsLogger.Error("Failed to fetch pins", err, port.Fields{
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

	// Типизированная ошибка из колбэка точнее, чем ошибка Visit:
	// при HTTP-сбое Visit возвращает ту же ошибку, что получил OnError
	if responseErr != nil {
		return nil, responseErr
	}
	// Сюда попадают ошибки до запроса (например, домен не разрешен)
	if visitErr != nil {
		fetchPinsLogger.Error("Failed to initiate visit for fetching pins", visitErr, port.Fields{"url": targetURL})
		return nil, &domain.TransportError{Err: visitErr}
	}

	fetchPinsLogger.Info("Finished fetching pins", port.Fields{
		"url":          targetURL,
		"pins_fetched": len(fetchedPins),
	})

	return fetchedPins, nil
}
