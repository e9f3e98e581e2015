package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/samber/lo"
)

const postgresPageSize = 100

// Схема таблицы, которую ожидает хранилище
const RecordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	title      TEXT NOT NULL,
	category   TEXT NOT NULL,
	url        TEXT NOT NULL,
	date       TEXT NOT NULL,
	icon       TEXT NOT NULL DEFAULT '',
	callout    TEXT NOT NULL,
	body       TEXT NOT NULL,
	link_back  TEXT NOT NULL,
	archived   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Хранилище записей в Postgres. Альтернатива Notion для локального запуска.
// Все записи одной базы лежат под своим collection
type PostgresStorage struct {
	db         *sqlx.DB
	collection string
}

func NewPostgresStorage(db *sqlx.DB, collection string) *PostgresStorage {
	return &PostgresStorage{db: db, collection: collection}
}

// Migrate создает таблицу, если ее еще нет
func (s *PostgresStorage) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, RecordsSchema)
	return err
}

func (s *PostgresStorage) Create(ctx context.Context, record model.Record) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`INSERT INTO records (collection, title, category, url, date, icon, callout, body, link_back, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.collection,
		record.Title,
		record.Category,
		record.URL,
		record.Date,
		record.Icon,
		record.Callout,
		record.Body,
		record.LinkBack,
		time.Now().UTC(),
	); err != nil {
		return err
	}

	return nil
}

// QueryOnOrBefore отдает записи с датой не позже cutoff.
// Дата хранится строкой как пришла, поэтому сравниваем первые 10 символов (YYYY-MM-DD).
// Курсор - id последней записи предыдущей страницы
func (s *PostgresStorage) QueryOnOrBefore(ctx context.Context, cutoff string, cursor string) (model.Page, error) {
	var afterID int64
	if cursor != "" {
		id, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return model.Page{}, err
		}
		afterID = id
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.Page{}, err
	}
	defer conn.Close()

	// Берем на одну запись больше, чтобы понять есть ли следующая страница
	var rows []dbRecord
	if err := conn.SelectContext(
		ctx,
		&rows,
		`SELECT id, date, archived FROM records
		 WHERE collection = $1 AND NOT archived AND left(date, 10) <= $2 AND id > $3
		 ORDER BY id
		 LIMIT $4`,
		s.collection,
		cutoff,
		afterID,
		postgresPageSize+1,
	); err != nil {
		return model.Page{}, err
	}

	hasMore := len(rows) > postgresPageSize
	if hasMore {
		rows = rows[:postgresPageSize]
	}

	page := model.Page{
		Records: lo.Map(rows, func(r dbRecord, _ int) model.StoredRecord {
			return model.StoredRecord{
				ID:       strconv.FormatInt(r.ID, 10),
				Date:     r.Date,
				Archived: r.Archived,
			}
		}),
		HasMore: hasMore,
	}

	if hasMore {
		page.NextCursor = strconv.FormatInt(rows[len(rows)-1].ID, 10)
	}

	return page, nil
}

// Archive помечает запись архивной. Для уже архивной записи ничего не меняется
func (s *PostgresStorage) Archive(ctx context.Context, id string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`UPDATE records SET archived = TRUE WHERE collection = $1 AND id = $2`,
		s.collection,
		id,
	); err != nil {
		return err
	}

	return nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить ее на колонки в таблице
type dbRecord struct {
	ID       int64  `db:"id"`
	Date     string `db:"date"`
	Archived bool   `db:"archived"`
}
