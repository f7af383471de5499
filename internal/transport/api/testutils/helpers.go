package testutils

import (
	"io"
	"net/http"
	"strings"
)

// GenerateOverBytesUnderRunes генерирует строку, длина которой в рунах будет всегда меньше длины в байтах.
func GenerateOverBytesUnderRunes(count int) string {
	symbol := "😁" // 4 байта, 1 руна
	return strings.Repeat(symbol, count)
}

// ReadBody читает тело ответа целиком. Ошибка чтения возвращается пустой строкой.
func ReadBody(res *http.Response) string {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return ""
	}
	return string(b)
}
