package model

import "time"

// Источник новостей. Статическая конфигурация, на время прогона не меняется
type Source struct {
	// Категория, под которой записи попадают в базу (select в Notion)
	Category string
	// Короткая подпись источника для заголовка вида "[Label] Title"
	Label string
	// Урл откуда забираем ленту
	FeedURL string
	// Иконка записи (emoji)
	Icon string
	// Каким парсером разбирать ленту: "rss" (по умолчанию) или "gofeed"
	Parser string
}

// Статья как элемент ленты
type Item struct {
	Title string
	// Категории статьи из самой ленты
	Categories []string
	Link       string
	// Дата публикации в источнике. Нулевое значение, если в ленте ее нет
	PublishedAt time.Time
	// Краткая выжимка из ленты, обычно html фрагмент
	Summary string
}

// Насколько полный текст удалось получить для статьи
type Origin int

const (
	// Полный текст страницы
	OriginFull Origin = iota
	// Текст недоступен, вместо него выжимка из ленты
	OriginSummary
	// Нет ни текста, ни выжимки, только заглушка
	OriginUnavailable
)

func (o Origin) String() string {
	switch o {
	case OriginFull:
		return "full"
	case OriginSummary:
		return "summary_fallback"
	case OriginUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Результат извлечения текста статьи. Text никогда не пустой
type Content struct {
	Text   string
	Origin Origin
	// Почему пришлось откатиться на выжимку или заглушку. nil для OriginFull
	Cause error
}

// Запись, которую мы кладем в хранилище. После записи не меняется
type Record struct {
	Title    string
	Category string
	URL      string
	// Дата в ISO-8601, как пришла от вызывающего
	Date string
	// Иконка, может быть пустой
	Icon string
	// Подпись блока-выноски перед текстом
	Callout string
	// Текст статьи, обрезанный до лимита хранилища
	Body string
	// Строка со ссылкой на оригинал
	LinkBack string
}

// Запись, как ее видит хранилище при выборке для очистки
type StoredRecord struct {
	ID       string
	Date     string
	Archived bool
}

// Одна страница результатов выборки
type Page struct {
	Records    []StoredRecord
	NextCursor string
	HasMore    bool
}
