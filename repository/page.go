package repository

// MaxPageSize bounds every list query.
const MaxPageSize = 100

// PageLimit maps a requested page size onto 1..MaxPageSize. Zero, negative
// and oversized requests get a full page.
func PageLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
