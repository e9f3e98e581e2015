package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// Промт по умолчанию: короткое содержание на корейском для блока-выноски
const defaultPromt = "\n\n위 기사를 한국어로 두세 문장으로 요약해 주세요."

// Лимит входного текста, чтобы не упираться в контекст модели
const maxInputRunes = 6000

// Делает короткое содержание статьи для блока-выноски
type OpenAISummarizer struct {
	// sdk для openai
	client *openai.Client
	// С его помощью будем просить gpt генерить summary
	promt string
	// Флаг вкл/выкл summarizer
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey string, promt string) *OpenAISummarizer {
	return newSummarizer(apiKey, promt, openai.DefaultConfig(apiKey))
}

func newSummarizer(apiKey string, promt string, cfg openai.ClientConfig) *OpenAISummarizer {
	if promt == "" {
		promt = defaultPromt
	}

	s := &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		promt:   promt,
		enabled: apiKey != "",
	}

	logger.Log.Infof("openai summarizer enabled: %v", s.enabled)

	return s
}

// Summarize возвращает пустую строку, если summarizer выключен
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	// Обкладываем мьютексом, запросы к openai у нас строго по одному
	s.mu.Lock()
	defer s.mu.Unlock()

	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	request := openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("%s%s", text, s.promt),
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("openai: create completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}

	return completeSentences(resp.Choices[0].Message.Content), nil
}

// Модель может оборвать ответ на середине предложения из-за MaxTokens.
// Отбрасываем незаконченный хвост после последней точки
func completeSentences(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	idx := strings.LastIndex(raw, ".")
	if idx < 0 {
		return raw
	}

	return raw[:idx+1]
}
