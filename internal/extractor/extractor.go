package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/kovalyov-valentin/news-feed-sync/internal/markup"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
)

// Меньше этого числа символов считаем, что сайт отдал заглушку вместо статьи
const MinTextLength = 50

const (
	BlockedPrefix         = "[본문 수집 제한] 사이트 보안 정책으로 전체 본문을 가져오지 못해 요약을 대신 표시합니다.\n\n"
	ConnectionErrorPrefix = "[연결 오류] 기사 페이지에 접속하지 못해 요약을 대신 표시합니다.\n\n"
	UnavailableText       = "본문을 가져올 수 없습니다. 아래 원문 링크에서 기사를 확인해 주세요."
)

// Страницы больше этого размера дочитываем только до лимита
const maxPageBytes = 10 << 20

// Страница открылась, но текста на ней почти нет: пейволл или защита от ботов
var ErrContentBlocked = errors.New("article text is too short")

// Функция, которая достает читаемый текст из html страницы
type ParseFunc func(r io.Reader, pageURL *url.URL) (string, error)

type Extractor struct {
	client    *http.Client
	userAgent string
	parse     ParseFunc
	maxBytes  int64
}

func New(timeout time.Duration, userAgent string) *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		parse:     parseReadability,
		maxBytes:  maxPageBytes,
	}
}

// WithParser подменяет разбор страницы, остальное поведение не меняется
func (e *Extractor) WithParser(parse ParseFunc) *Extractor {
	e.parse = parse
	return e
}

// Extract пытается получить полный текст статьи.
// Повторов нет: одна неудачная попытка и сразу откатываемся на выжимку из ленты или заглушку
func (e *Extractor) Extract(ctx context.Context, link string, summary string) model.Content {
	text, err := e.fetch(ctx, link)
	if err != nil {
		return fallback(summary, ConnectionErrorPrefix, err)
	}

	if markup.RuneLen(text) < MinTextLength {
		return fallback(summary, BlockedPrefix, ErrContentBlocked)
	}

	return model.Content{Text: text, Origin: model.OriginFull}
}

func fallback(summary string, prefix string, cause error) model.Content {
	if summary == "" {
		return model.Content{
			Text:   UnavailableText,
			Origin: model.OriginUnavailable,
			Cause:  cause,
		}
	}

	return model.Content{
		Text:   prefix + summary,
		Origin: model.OriginSummary,
		Cause:  cause,
	}
}

func (e *Extractor) fetch(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", link, err)
	}

	if !pageURL.IsAbs() {
		return "", fmt.Errorf("url %q is not absolute", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	text, err := e.parse(io.LimitReader(resp.Body, e.maxBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	return text, nil
}

func parseReadability(r io.Reader, pageURL *url.URL) (string, error) {
	doc, err := readability.FromReader(r, pageURL)
	if err != nil {
		return "", err
	}

	return cleanText(doc.TextContent), nil
}

// Библиотека readability оставляет много пустых строк в тексте очищенном от html тегов.
// Все последовательности из 3 и более переводов строки заменяем на один
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}
