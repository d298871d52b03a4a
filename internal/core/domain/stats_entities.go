package domain

// ScanStats - итоги обработки одной поисковой задачи.
type ScanStats struct {
	ListingsFetched int
	ListingsNew     int
}
