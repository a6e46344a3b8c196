package database

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// NormalizePage clamps page and limit to sane values and returns the
// effective page, limit and row offset.
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

// SortDirection returns "ASC" or "DESC" for order, falling back to def.
func SortDirection(order, def string) string {
	switch order {
	case "ASC", "asc", "Asc":
		return "ASC"
	case "DESC", "desc", "Desc":
		return "DESC"
	}
	return def
}
