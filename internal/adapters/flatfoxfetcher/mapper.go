package flatfoxfetcher

import (
	"strconv"
	"strings"

	"flatfox-parser-service/internal/constants"
	"flatfox-parser-service/internal/core/domain"
	"flatfox-parser-service/internal/core/port"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// apiListing - запись public-listing эндпоинта. Числовые поля приходят
// как null для части объявлений, поэтому указатели.
type apiListing struct {
	PK               int64       `json:"pk"`
	PriceDisplay     *float64    `json:"price_display"`
	NumberOfRooms    *float64    `json:"number_of_rooms"`
	SurfaceLiving    *float64    `json:"surface_living"`
	PitchTitle       string      `json:"pitch_title"`
	ObjectTitle      string      `json:"object_title"`
	DescriptionTitle string      `json:"description_title"`
	Description      string      `json:"description"`
	PublicAddress    string      `json:"public_address"`
	URL              string      `json:"url"`
	CoverImage       *coverImage `json:"cover_image"`
}

type coverImage struct {
	URL string `json:"url"`
}

// Цены показываются в швейцарском формате: апостроф как разделитель тысяч
var pricePrinter = message.NewPrinter(language.MustParse("de-CH"))

// toListing преобразует запись API в доменное объявление. Вторым
// значением возвращает false, если запись непригодна (нет ссылки или
// заголовка) - такие записи отбрасываются, не прерывая обработку.
func toListing(record apiListing, logger port.LoggerPort) (domain.Listing, bool) {
	if record.URL == "" {
		logger.Warn("Skipping listing without URL", port.Fields{"pk": record.PK})
		return domain.Listing{}, false
	}

	title := record.PitchTitle
	if title == "" {
		title = record.ObjectTitle
	}
	if title == "" {
		logger.Warn("Skipping listing without title", port.Fields{"pk": record.PK})
		return domain.Listing{}, false
	}

	price := ""
	if record.PriceDisplay != nil {
		price = formatPrice(*record.PriceDisplay)
	}

	image := ""
	if record.CoverImage != nil && record.CoverImage.URL != "" {
		image = absolutize(record.CoverImage.URL)
	}

	return domain.Listing{
		Fingerprint: domain.ListingFingerprint(record.PK, price),
		SourceID:    record.PK,
		Title:       title,
		Price:       price,
		Size:        formatSize(record.NumberOfRooms, record.SurfaceLiving),
		Link:        absolutize(record.URL),
		Description: buildDescription(record),
		Address:     record.PublicAddress,
		Image:       image,
		PriceValue:  record.PriceDisplay,
		RoomsCount:  record.NumberOfRooms,
	}, true
}

func formatPrice(value float64) string {
	return pricePrinter.Sprintf("%v", number.Decimal(value)) + " " + constants.Currency
}

// formatSize собирает человекочитаемую строку вида "3.5 rooms, 72 m²".
// Отсутствующие составляющие опускаются.
func formatSize(rooms, surface *float64) string {
	var parts []string
	if rooms != nil {
		parts = append(parts, strconv.FormatFloat(*rooms, 'f', -1, 64)+" rooms")
	}
	if surface != nil {
		parts = append(parts, strconv.FormatFloat(*surface, 'f', -1, 64)+" m²")
	}
	return strings.Join(parts, ", ")
}

// buildDescription предпочитает короткий description_title; длинное
// описание обрезается по рунам, чтобы не резать посреди UTF-8 символа
func buildDescription(record apiListing) string {
	if record.DescriptionTitle != "" {
		return record.DescriptionTitle
	}

	runes := []rune(record.Description)
	if len(runes) <= constants.DescriptionLimit {
		return record.Description
	}
	return string(runes[:constants.DescriptionLimit]) + "…"
}

// absolutize превращает относительный путь flatfox в полную ссылку
func absolutize(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return constants.ListingHost + path
}
