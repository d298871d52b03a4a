package port

import "context"

// KnownListingsPort - хранилище уже виденных идентичностей объявлений.
// Сам конвейер идентичности не хранит, это обязанность внешнего
// хранилища; здесь только его потребляемая поверхность.
type KnownListingsPort interface {
	// FilterNew возвращает подмножество fingerprints, которых еще нет
	// в хранилище, в исходном порядке.
	FilterNew(ctx context.Context, fingerprints []string) ([]string, error)

	// MarkSeen фиксирует идентичности как виденные.
	MarkSeen(ctx context.Context, fingerprints []string) error
}
