package httpapi

import "github.com/hamed0406/renderwatch/internal/domain"

func isValidHTTPURL(raw string) bool {
	return domain.IsHTTPURL(raw)
}

func normalizeHTTPURL(raw string) string {
	return domain.NormalizeURL(raw)
}
