package constants

// Source
const (
	SourceID   = "flatfox"
	SourceName = "Flatfox"

	// Хост для абсолютизации относительных ссылок и путей картинок
	ListingHost = "https://flatfox.ch"

	// Базовый URL API (переопределяется в тестах)
	APIBaseURL = "https://flatfox.ch/api/v1"
)

// Pin endpoint
const (
	// Жесткий потолок количества результатов. Сайт flatfox сам
	// ограничивает выдачу этим значением, любое значение вызывающего
	// перекрывается.
	MaxPinCount = 400
)

// RecognizedPinParams - ключи поисковых параметров, которые копируются
// в запрос к pin-эндпоинту. Отсутствующие ключи опускаются, не
// подставляются по умолчанию.
var RecognizedPinParams = []string{
	"east", "west", "north", "south",
	"object_category", "offer_type",
	"min_rooms", "max_rooms", "min_price", "max_price",
	"attribute", "moving_date_from", "is_swap", "ordering",
}

// Public-listing endpoint
const (
	// Размер батча идентификаторов в одном запросе деталей.
	// Ограничивает и размер запроса, и радиус поражения при сбое батча.
	DetailBatchSize = 20
)

// Mapper
const (
	Currency = "CHF"

	// Длинное описание обрезается до этой длины, если нет короткого
	// поля description_title
	DescriptionLimit = 200
)
