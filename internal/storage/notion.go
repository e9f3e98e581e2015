package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/samber/lo"
)

// Максимум, который Notion отдает за один запрос выборки
const notionPageSize = 100

// Имена свойств в базе Notion
type NotionProperties struct {
	Title    string
	URL      string
	Date     string
	Category string
}

type NotionOptions struct {
	BaseURL    string
	Token      string
	Version    string
	DatabaseID string
	Properties NotionProperties
}

// Хранилище записей в базе Notion через REST API
type NotionStorage struct {
	client *http.Client
	opts   NotionOptions
}

func NewNotionStorage(client *http.Client, opts NotionOptions) *NotionStorage {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &NotionStorage{client: client, opts: opts}
}

// Create создает страницу в базе: свойства записи и блоки с текстом
func (s *NotionStorage) Create(ctx context.Context, record model.Record) error {
	page := notionPage{
		Parent: notionParent{DatabaseID: s.opts.DatabaseID},
		Properties: map[string]any{
			s.opts.Properties.Title: map[string]any{
				"title": []notionRichText{plainText(record.Title)},
			},
			s.opts.Properties.URL: map[string]any{
				"url": record.URL,
			},
			s.opts.Properties.Date: map[string]any{
				"date": map[string]string{"start": record.Date},
			},
			s.opts.Properties.Category: map[string]any{
				"select": map[string]string{"name": record.Category},
			},
		},
		Children: []notionBlock{
			{
				Object: "block",
				Type:   "callout",
				Callout: &notionCallout{
					RichText: []notionRichText{plainText(record.Callout)},
					Icon:     &notionIcon{Type: "emoji", Emoji: lo.Ternary(record.Icon != "", record.Icon, "📰")},
				},
			},
			{
				Object:    "block",
				Type:      "paragraph",
				Paragraph: &notionParagraph{RichText: []notionRichText{plainText(record.Body)}},
			},
			{
				Object:    "block",
				Type:      "paragraph",
				Paragraph: &notionParagraph{RichText: []notionRichText{linkText(record.LinkBack, record.URL)}},
			},
		},
	}

	if record.Icon != "" {
		page.Icon = &notionIcon{Type: "emoji", Emoji: record.Icon}
	}

	if err := s.do(ctx, http.MethodPost, "/pages", page, nil); err != nil {
		return fmt.Errorf("notion: create page %q: %w", record.Title, err)
	}

	return nil
}

// QueryOnOrBefore возвращает одну страницу записей с датой не позже cutoff.
// cursor пустой для первой страницы
func (s *NotionStorage) QueryOnOrBefore(ctx context.Context, cutoff string, cursor string) (model.Page, error) {
	query := notionQuery{
		Filter: notionFilter{
			Property: s.opts.Properties.Date,
			Date:     notionDateFilter{OnOrBefore: cutoff},
		},
		PageSize:    notionPageSize,
		StartCursor: cursor,
	}

	var resp notionQueryResponse
	if err := s.do(ctx, http.MethodPost, "/databases/"+s.opts.DatabaseID+"/query", query, &resp); err != nil {
		return model.Page{}, fmt.Errorf("notion: query database: %w", err)
	}

	return model.Page{
		Records: lo.Map(resp.Results, func(r notionQueryResult, _ int) model.StoredRecord {
			return model.StoredRecord{
				ID:       r.ID,
				Date:     r.date(s.opts.Properties.Date),
				Archived: r.Archived,
			}
		}),
		NextCursor: lo.FromPtr(resp.NextCursor),
		HasMore:    resp.HasMore,
	}, nil
}

// Archive помечает страницу архивной. Повторный вызов для архивной страницы Notion принимает без ошибки
func (s *NotionStorage) Archive(ctx context.Context, id string) error {
	if err := s.do(ctx, http.MethodPatch, "/pages/"+id, map[string]bool{"archived": true}, nil); err != nil {
		return fmt.Errorf("notion: archive page %s: %w", id, err)
	}

	return nil
}

func (s *NotionStorage) do(ctx context.Context, method string, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", s.opts.Version)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Notion кладет причину в тело ответа, без нее ошибку не разобрать
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func plainText(content string) notionRichText {
	return notionRichText{Type: "text", Text: notionText{Content: content}}
}

func linkText(content string, url string) notionRichText {
	return notionRichText{Type: "text", Text: notionText{Content: content, Link: &notionLink{URL: url}}}
}

// Модели запросов и ответов Notion API

type notionPage struct {
	Parent     notionParent   `json:"parent"`
	Icon       *notionIcon    `json:"icon,omitempty"`
	Properties map[string]any `json:"properties"`
	Children   []notionBlock  `json:"children"`
}

type notionParent struct {
	DatabaseID string `json:"database_id"`
}

type notionIcon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type notionBlock struct {
	Object    string           `json:"object"`
	Type      string           `json:"type"`
	Callout   *notionCallout   `json:"callout,omitempty"`
	Paragraph *notionParagraph `json:"paragraph,omitempty"`
}

type notionCallout struct {
	RichText []notionRichText `json:"rich_text"`
	Icon     *notionIcon      `json:"icon,omitempty"`
}

type notionParagraph struct {
	RichText []notionRichText `json:"rich_text"`
}

type notionRichText struct {
	Type string     `json:"type"`
	Text notionText `json:"text"`
}

type notionText struct {
	Content string      `json:"content"`
	Link    *notionLink `json:"link,omitempty"`
}

type notionLink struct {
	URL string `json:"url"`
}

type notionQuery struct {
	Filter      notionFilter `json:"filter"`
	PageSize    int          `json:"page_size"`
	StartCursor string       `json:"start_cursor,omitempty"`
}

type notionFilter struct {
	Property string           `json:"property"`
	Date     notionDateFilter `json:"date"`
}

type notionDateFilter struct {
	OnOrBefore string `json:"on_or_before"`
}

type notionQueryResponse struct {
	Results    []notionQueryResult `json:"results"`
	HasMore    bool                `json:"has_more"`
	NextCursor *string             `json:"next_cursor"`
}

type notionQueryResult struct {
	ID         string                     `json:"id"`
	Archived   bool                       `json:"archived"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Достает начало даты из свойства. Для очистки это только информация в логах
func (r notionQueryResult) date(property string) string {
	raw, ok := r.Properties[property]
	if !ok {
		return ""
	}

	var prop struct {
		Date *struct {
			Start string `json:"start"`
		} `json:"date"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || prop.Date == nil {
		return ""
	}

	return prop.Date.Start
}
