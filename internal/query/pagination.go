package query

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PageRequest is a normalized pagination window.
type PageRequest struct {
	Page  int
	Limit int
	Skip  int
}

// PageInfo is the pagination envelope returned alongside list results.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NormalizePage clamps raw page/limit parameters into a usable window.
// Non-numeric or absent values fall back to defaults, page is floored to
// 1, and limit is clamped to [1, 100]; oversized limits are capped, never
// rejected.
func NormalizePage(pageRaw, limitRaw string) PageRequest {
	page := parseOrDefault(pageRaw, defaultPage)
	limit := parseOrDefault(limitRaw, defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return PageRequest{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// ShapePage computes the response envelope for a total row count. Pages
// is always at least 1 so clients see a coherent page count even for an
// empty result.
func ShapePage(total int, req PageRequest) PageInfo {
	pages := (total + req.Limit - 1) / req.Limit
	if pages < 1 {
		pages = 1
	}
	return PageInfo{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
		Pages: pages,
	}
}

func parseOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return fallback
	}
	return n
}
