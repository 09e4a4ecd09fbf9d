package domain

// Page and chat window bounds shared by the HTTP and repo layers.
const (
	DefaultPageLimit  = 20
	MaxPageLimit      = 100
	DefaultFetchLimit = 100
	MaxFetchLimit     = 500
)

// PaginationParams carries page/limit values for trip browsing.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil or non-positive values fall back to page=1 and DefaultPageLimit; the
// limit is capped at MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: clampLimit(limit, DefaultPageLimit, MaxPageLimit)}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func clampLimit(limit *int, def, maxLimit int) int {
	if limit == nil || *limit < 1 {
		return def
	}
	return min(*limit, maxLimit)
}
