package flatfoxfetcher

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// FlatfoxFetcherAdapter отвечает за все взаимодействия с API flatfox
type FlatfoxFetcherAdapter struct {
	// родительский коллектор, который разделяет лимиты
	collector *colly.Collector
	baseURL   string
}

// NewFlatfoxFetcherAdapter - конструктор. requestDelay - пауза между
// последовательными запросами (в том числе между батчами деталей),
// защита от rate-limiting со стороны flatfox.
func NewFlatfoxFetcherAdapter(baseURL string, requestDelay time.Duration) (*FlatfoxFetcherAdapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("FlatfoxFetcherAdapter: invalid base URL %q", baseURL)
	}

	// родительский коллектор
	c := colly.NewCollector(colly.AllowedDomains(u.Hostname()), colly.AllowURLRevisit())

	// Эти правила будут наследоваться всеми клонами коллектора
	err = c.Limit(&colly.LimitRule{
		DomainGlob: u.Hostname(),

		// Запросы строго последовательные: батчи деталей идут один за
		// другим, без перекрытия
		Parallelism: 1,

		// Задержка между запросами к flatfox
		Delay: requestDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("FlatfoxFetcherAdapter: failed to set limit rule: %w", err)
	}

	extensions.RandomUserAgent(c) // На каждый запрос будет подставлен User-Agent реального браузера
	extensions.Referer(c)         // Автоматически подставляет заголовок Referer, имитируя навигацию

	return &FlatfoxFetcherAdapter{
		collector: c,
		baseURL:   baseURL,
	}, nil
}
