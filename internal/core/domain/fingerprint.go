package domain

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// buildFingerprintPayload создает стабильную строку из идентификатора
// источника и отформатированной цены. Пока цена не меняется, два снимка
// одного объявления схлопываются в одну идентичность; смена цены дает
// новый fingerprint и объявление всплывает как "новое".
func buildFingerprintPayload(sourceID int64, price string) string {
	return strconv.FormatInt(sourceID, 10) + "|" + price
}

// ListingFingerprint вычисляет SHA256 идентичность объявления.
// Чистая детерминированная функция.
func ListingFingerprint(sourceID int64, price string) string {
	h := sha256.New()
	h.Write([]byte(buildFingerprintPayload(sourceID, price)))
	return fmt.Sprintf("%x", h.Sum(nil))
}
