package services

// Параметры пагинации списков по умолчанию.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// NormalizePage приводит skip/limit к допустимым значениям:
// отрицательный offset становится 0, limit вне (0, MaxPageLimit] заменяется на границу.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return offset, limit
}
