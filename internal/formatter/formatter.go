package formatter

import (
	"github.com/kovalyov-valentin/news-feed-sync/internal/markup"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
)

// Notion не принимает текстовый блок длиннее 2000 символов.
// Оставляем запас под маркер обрезки
const MaxBodyLength = 1800

const (
	TruncationMarker = "\n\n...(내용이 길어 일부만 표시합니다. 전체 기사는 원문 링크에서 확인하세요.)"
	LinkBackPrefix   = "👉 원문 기사 보기: "
	CalloutLabel     = "📰 기사 본문"
	DigestLabel      = "🤖 AI 요약: "
)

// Сырые поля, из которых собирается запись
type Input struct {
	Category string
	// Если пустая, заголовок остается без подписи источника
	SourceLabel string
	Title       string
	Link        string
	// Дата не проверяется и уходит в хранилище как есть
	Date    string
	Content model.Content
	Icon    string
	// Краткое содержание от summarizer, может быть пустым
	Digest string
}

// Format собирает запись для хранилища. Чистая функция: одинаковый вход дает одинаковую запись
func Format(in Input) model.Record {
	return model.Record{
		Title:    displayTitle(in.SourceLabel, in.Title),
		Category: in.Category,
		URL:      in.Link,
		Date:     in.Date,
		Icon:     in.Icon,
		Callout:  callout(in.Digest),
		Body:     body(in.Content.Text),
		LinkBack: LinkBackPrefix + in.Link,
	}
}

func displayTitle(label string, title string) string {
	if label == "" {
		return title
	}

	return "[" + label + "] " + title
}

func callout(digest string) string {
	if digest == "" {
		return CalloutLabel
	}

	return CalloutLabel + "\n" + DigestLabel + digest
}

func body(text string) string {
	cut, truncated := markup.Truncate(text, MaxBodyLength)
	if !truncated {
		return text
	}

	return cut + TruncationMarker
}
