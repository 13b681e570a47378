package domain

import (
	"slices"
	"strings"
)

// Latest выбирает объект с максимальным CreatedAt; при равенстве побеждает больший id.
// Чистая функция: ни ввода-вывода, ни побочных эффектов.
func Latest(entries []StoredObject) (StoredObject, bool) {
	if len(entries) == 0 {
		return StoredObject{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.CreatedAt.After(best.CreatedAt) ||
			(e.CreatedAt.Equal(best.CreatedAt) && e.ID > best.ID) {
			best = e
		}
	}
	return best, true
}

// SortNewestFirst сортирует по тому же порядку, что и Latest: первый элемент — latest.
func SortNewestFirst(entries []StoredObject) {
	slices.SortFunc(entries, func(a, b StoredObject) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
