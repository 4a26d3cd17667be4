package infrastructure

import "github.com/DRSN-tech/dropship-sync/pkg/e"

// GetExtensionFromContentType возвращает расширение объекта по Content-Type.
// Поддерживает json, ndjson и gzip. Для остальных типов возвращает e.ErrUnsupportedMediaType.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "application/json", "application/json; charset=utf-8":
		return "json", nil
	case "application/x-ndjson":
		return "ndjson", nil
	case "application/gzip":
		return "json.gz", nil
	default:
		return "bin", e.ErrUnsupportedMediaType
	}
}
