package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// SearchParams - плоский набор параметров поиска, извлеченный из
// пользовательской поисковой ссылки. Ключи и значения хранятся как есть,
// без валидации типов: числовые границы парсятся лениво там, где нужны.
type SearchParams map[string]string

// ExtractSearchParams разбирает поисковый URL в SearchParams.
// Сохраняем ВСЕ параметры запроса (без allow-list) - каждый компонент
// дальше по конвейеру читает только известные ему ключи.
func ExtractSearchParams(rawURL string) (SearchParams, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSearchURL, rawURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSearchURL, rawURL)
	}

	params := make(SearchParams)
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		// Повторяющиеся ключи у flatfox не встречаются, берем первое значение
		params[key] = values[0]
	}

	return params, nil
}

// Get возвращает значение параметра и признак его наличия.
func (p SearchParams) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// FilterBounds - границы для клиентской перефильтрации результатов.
// Серверная фильтрация pin-эндпоинта ненадежна, поэтому границы
// применяются повторно на нашей стороне как авторитетные.
type FilterBounds struct {
	MinRooms float64
	MaxRooms float64
	MinPrice float64
	MaxPrice float64
}

// ParseFilterBounds извлекает числовые границы из параметров поиска.
// Отсутствующие или нечитаемые нижние границы считаются 0,
// верхние - +Inf.
func ParseFilterBounds(params SearchParams) FilterBounds {
	return FilterBounds{
		MinRooms: parseBound(params, "min_rooms", 0),
		MaxRooms: parseBound(params, "max_rooms", math.Inf(1)),
		MinPrice: parseBound(params, "min_price", 0),
		MaxPrice: parseBound(params, "max_price", math.Inf(1)),
	}
}

func parseBound(params SearchParams, key string, fallback float64) float64 {
	raw, ok := params[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Allows проверяет, попадает ли объявление в границы (включительно).
// Объявление без числового значения трактуется как 0: при заданной
// нижней границе оно отсеется, при границах по умолчанию - пройдет.
func (b FilterBounds) Allows(listing Listing) bool {
	rooms := 0.0
	if listing.RoomsCount != nil {
		rooms = *listing.RoomsCount
	}
	price := 0.0
	if listing.PriceValue != nil {
		price = *listing.PriceValue
	}

	if rooms < b.MinRooms || rooms > b.MaxRooms {
		return false
	}
	if price < b.MinPrice || price > b.MaxPrice {
		return false
	}
	return true
}
