package markup

import (
	"strings"
	"unicode/utf8"
)

// Выжимки из лент обычно приходят html фрагментом.
// Убираем только минимальный набор тегов, остальное оставляем как есть
var summaryReplacer = strings.NewReplacer(
	"<p>",
	"",
	"</p>",
	"",
	"<br>",
	"",
)

// Функция которая чистит выжимку из ленты от абзацев и переносов
func StripSummary(src string) string {
	return strings.TrimSpace(summaryReplacer.Replace(src))
}

// Длина строки в символах, а не в байтах.
// Лимиты Notion считаются в символах, а тексты у нас в основном на корейском
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Обрезает строку до limit символов. Второе значение говорит, была ли строка обрезана
func Truncate(s string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}

	if RuneLen(s) <= limit {
		return s, false
	}

	runes := []rune(s)
	return string(runes[:limit]), true
}
