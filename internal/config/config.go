package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/robfig/cron/v3"
)

const (
	BackendNotion   = "notion"
	BackendPostgres = "postgres"
)

// Хранить в файле мы будем в формате hcl.
// Переменные окружения без префикса: секреты NOTION_TOKEN и DATABASE_ID уже заведены в CI под этими именами
type Config struct {
	// Куда пишем записи: notion или postgres
	Backend string `hcl:"backend" env:"BACKEND" default:"notion"`

	NotionToken   string `hcl:"notion_token" env:"NOTION_TOKEN"`
	DatabaseID    string `hcl:"database_id" env:"DATABASE_ID"`
	NotionVersion string `hcl:"notion_version" env:"NOTION_VERSION" default:"2022-06-28"`
	NotionBaseURL string `hcl:"notion_base_url" env:"NOTION_BASE_URL" default:"https://api.notion.com/v1"`

	// Имена свойств в базе Notion
	TitleProperty    string `hcl:"title_property" env:"TITLE_PROPERTY" default:"이름"`
	URLProperty      string `hcl:"url_property" env:"URL_PROPERTY" default:"URL"`
	DateProperty     string `hcl:"date_property" env:"DATE_PROPERTY" default:"날짜"`
	CategoryProperty string `hcl:"category_property" env:"CATEGORY_PROPERTY" default:"카테고리"`

	DatabaseDSN string `hcl:"database_dsn" env:"DATABASE_DSN"`

	// Cron выражение. Пустое - один прогон и выход
	Schedule string `hcl:"schedule" env:"SCHEDULE"`

	// Сколько статей брать из одной ленты за прогон
	MaxItemsPerSource int `hcl:"max_items_per_source" env:"MAX_ITEMS_PER_SOURCE" default:"4"`
	// Сколько дней храним записи
	RetentionDays int `hcl:"retention_days" env:"RETENTION_DAYS" default:"3"`
	// Заголовок вида "[Источник] Заголовок" или просто заголовок
	LabeledTitles bool `hcl:"labeled_titles" env:"LABELED_TITLES" default:"true"`
	// Ставить ли emoji иконку на запись
	Icons bool `hcl:"icons" env:"ICONS" default:"true"`

	RequestTimeout time.Duration `hcl:"request_timeout" env:"REQUEST_TIMEOUT" default:"12s"`
	// Часть сайтов не отдает страницу клиентам, которые не похожи на браузер
	UserAgent string `hcl:"user_agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

	FilterKeywords []string `hcl:"filter_keywords" env:"FILTER_KEYWORDS"`

	OpenAIKey   string `hcl:"openai_key" env:"OPENAI_KEY"`
	OpenAIPromt string `hcl:"openai_promt" env:"OPENAI_PROMT"`

	PushgatewayURL string `hcl:"pushgateway_url" env:"PUSHGATEWAY_URL"`
	Debug          bool   `hcl:"debug" env:"DEBUG"`
}

// Файлы, в которых ищем конфиг, если вызывающий не передал свои
var defaultFiles = []string{"./config.hcl", "./config.local.hcl"}

// Load читает конфиг из файлов и окружения и проверяет его.
// Конфиг собирается один раз в main и дальше передается в компоненты как значение
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = defaultFiles
	}

	var cfg Config

	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		// Флагов командной строки у нас нет
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет обязательные секреты и границы числовых настроек
func (cfg Config) Validate() error {
	var errs []error

	switch cfg.Backend {
	case BackendNotion:
		if cfg.NotionToken == "" {
			errs = append(errs, errors.New("NOTION_TOKEN is required"))
		}
	case BackendPostgres:
		if cfg.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", cfg.Backend))
	}

	// Для обоих хранилищ это идентификатор коллекции, куда пишем
	if cfg.DatabaseID == "" {
		errs = append(errs, errors.New("DATABASE_ID is required"))
	}

	if cfg.MaxItemsPerSource < 1 {
		errs = append(errs, errors.New("max_items_per_source must be positive"))
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, errors.New("retention_days must not be negative"))
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return nil
}
