package domain

import "strings"

// Blacklist - набор стоп-слов, задаваемый при инициализации адаптера.
// Никакого скрытого глобального состояния: значение явно передается
// в каждый компонент, которому оно нужно.
type Blacklist []string

// NewBlacklist нормализует термины (trim + нижний регистр), пустые
// отбрасывает.
func NewBlacklist(terms []string) Blacklist {
	bl := make(Blacklist, 0, len(terms))
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		bl = append(bl, t)
	}
	return bl
}

// Allows возвращает true, если объявление проходит фильтр:
// заголовок непустой и ни заголовок, ни описание не содержат
// ни одного стоп-слова (подстрочное совпадение без учета регистра).
// Пустой blacklist пропускает все объявления с заголовком.
func (bl Blacklist) Allows(listing Listing) bool {
	if listing.Title == "" {
		return false
	}

	title := strings.ToLower(listing.Title)
	description := strings.ToLower(listing.Description)

	for _, term := range bl {
		if strings.Contains(title, term) || strings.Contains(description, term) {
			return false
		}
	}
	return true
}
