package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"go.uber.org/zap"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore barcha repository portlarining SQL varianti (SQLite yoki PostgreSQL)
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *zap.Logger
}

var (
	_ repository.CatalogRepository = (*SQLStore)(nil)
	_ repository.HelpRepository    = (*SQLStore)(nil)
	_ repository.UserRepository    = (*SQLStore)(nil)
	_ repository.DialogRepository  = (*SQLStore)(nil)
)

func newSQLStore(db *sql.DB, d dialect, log *zap.Logger) *SQLStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{db: db, dialect: d, log: log}
}

// rebind "?" belgilarini PostgreSQL uchun $1, $2 ... ga almashtiradi
func rebind(d dialect, query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, rebind(s.dialect, query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, rebind(s.dialect, query), args...)
}

func schema(d dialect) []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "TIMESTAMP"
	if d == dialectPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS cars (
	id ` + id + `,
	category TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	specs TEXT NOT NULL DEFAULT '',
	is_discounted INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE INDEX IF NOT EXISTS idx_cars_category ON cars (category)`,
		`CREATE TABLE IF NOT EXISTS help_categories (
	id ` + id + `,
	key TEXT UNIQUE NOT NULL,
	label TEXT NOT NULL,
	button TEXT NOT NULL,
	sort_index INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS help_questions (
	id ` + id + `,
	category_id BIGINT NOT NULL REFERENCES help_categories(id) ON DELETE CASCADE,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	sort_index INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS qa (
	id ` + id + `,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'text',
	reaction TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS users (
	id ` + id + `,
	name TEXT NOT NULL DEFAULT '',
	age INTEGER NOT NULL DEFAULT 0,
	city TEXT NOT NULL DEFAULT '',
	chat_id BIGINT NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_chat_id ON users (chat_id)`,
		`CREATE TABLE IF NOT EXISTS feedback (
	id ` + id + `,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	user_id BIGINT NOT NULL,
	liked INTEGER NOT NULL,
	created_at ` + ts + ` DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS ai_dialogs (
	id ` + id + `,
	request_id TEXT NOT NULL,
	chat_id BIGINT NOT NULL,
	user_id BIGINT,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	prompt TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at ` + ts + ` DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_dialogs_chat_time ON ai_dialogs (chat_id, created_at)`,
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed bo'sh jadvallarni standart ma'lumotlar bilan to'ldiradi
func (s *SQLStore) Seed(ctx context.Context) error {
	n, err := s.count(ctx, "cars")
	if err != nil {
		return err
	}
	if n == 0 {
		if err := s.ReplaceAll(ctx, DefaultCars()); err != nil {
			return fmt.Errorf("seed cars: %w", err)
		}
		s.log.Info("catalog seeded", zap.Int("cars", len(DefaultCars())))
	}

	if n, err = s.count(ctx, "help_categories"); err != nil {
		return err
	}
	if n == 0 {
		if err := s.insertHelp(ctx, DefaultHelpSections()); err != nil {
			return fmt.Errorf("seed help: %w", err)
		}
	}

	if n, err = s.count(ctx, "qa"); err != nil {
		return err
	}
	if n == 0 {
		for _, a := range DefaultCannedAnswers() {
			if _, err := s.exec(ctx, `INSERT INTO qa (question, answer) VALUES (?, ?)`, a.Question, a.Answer); err != nil {
				return fmt.Errorf("seed qa: %w", err)
			}
		}
	}
	return nil
}

func (s *SQLStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *SQLStore) insertHelp(ctx context.Context, sections []entity.HelpSection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, sec := range sections {
		var id int64
		err := tx.QueryRowContext(ctx,
			rebind(s.dialect, `INSERT INTO help_categories (key, label, button, sort_index) VALUES (?, ?, ?, ?) RETURNING id`),
			sec.Key, sec.Label, sec.Button, sec.SortIndex).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert help category %q: %w", sec.Key, err)
		}
		for i, q := range sec.Questions {
			_, err := tx.ExecContext(ctx,
				rebind(s.dialect, `INSERT INTO help_questions (category_id, question, answer, sort_index) VALUES (?, ?, ?, ?)`),
				id, q.Question, q.Answer, i)
			if err != nil {
				return fmt.Errorf("insert help question: %w", err)
			}
		}
	}
	return tx.Commit()
}

const carColumns = `id, category, brand, model, price, description, image, specs, is_discounted`

func (s *SQLStore) cars(ctx context.Context, where string, args ...any) ([]entity.Car, error) {
	q := "SELECT " + carColumns + " FROM cars"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Car
	for rows.Next() {
		var (
			c          entity.Car
			discounted int
		)
		if err := rows.Scan(&c.ID, &c.Category, &c.Brand, &c.Model, &c.Price, &c.Description, &c.Image, &c.Specs, &discounted); err != nil {
			return nil, err
		}
		c.Discounted = discounted != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) ByCategory(ctx context.Context, category string) ([]entity.Car, error) {
	return s.cars(ctx, "category = ?", category)
}

func (s *SQLStore) Discounted(ctx context.Context) ([]entity.Car, error) {
	return s.cars(ctx, "is_discounted = 1")
}

// ByFilters va ByNameSubstring Go tomonida filtrlanadi: SQLite LOWER faqat ASCII ni o'zgartiradi,
// LIKE esa foydalanuvchi matnidagi % va _ ni shablon deb tushunadi
func (s *SQLStore) ByFilters(ctx context.Context, brand, model string) ([]entity.Car, error) {
	all, err := s.cars(ctx, "")
	if err != nil {
		return nil, err
	}
	brand, model = strings.TrimSpace(brand), strings.TrimSpace(model)
	return selectCars(all, func(c entity.Car) bool { return matchesFilters(c, brand, model) }), nil
}

func (s *SQLStore) ByNameSubstring(ctx context.Context, text string) ([]entity.Car, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	all, err := s.cars(ctx, "")
	if err != nil {
		return nil, err
	}
	return selectCars(all, func(c entity.Car) bool { return matchesName(c, text) }), nil
}

// ByPriceBand narx matn sifatida saqlanadi, shuning uchun oraliq Go tomonida hisoblanadi
func (s *SQLStore) ByPriceBand(ctx context.Context, center, width int64) ([]entity.Car, error) {
	all, err := s.cars(ctx, "")
	if err != nil {
		return nil, err
	}
	return filterPriceBand(all, center, width), nil
}

func (s *SQLStore) All(ctx context.Context) ([]entity.Car, error) {
	return s.cars(ctx, "")
}

func (s *SQLStore) ReplaceAll(ctx context.Context, cars []entity.Car) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cars`); err != nil {
		return fmt.Errorf("clear cars: %w", err)
	}
	insert := rebind(s.dialect, `INSERT INTO cars (category, brand, model, price, description, image, specs, is_discounted)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, c := range cars {
		discounted := 0
		if c.Discounted {
			discounted = 1
		}
		if _, err := tx.ExecContext(ctx, insert,
			c.Category, c.Brand, c.Model, c.Price, c.Description, c.Image, c.Specs, discounted); err != nil {
			return fmt.Errorf("insert car %s: %w", c.FullName(), err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Find(ctx context.Context, text string) (*entity.CannedAnswer, error) {
	rows, err := s.query(ctx, `SELECT question, answer FROM qa ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var entries []entity.CannedAnswer
	for rows.Next() {
		var a entity.CannedAnswer
		if err := rows.Scan(&a.Question, &a.Answer); err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sections, err := s.Sections(ctx)
	if err != nil {
		return nil, err
	}
	return matchCanned(append(entries, cannedFromSections(sections)...), text), nil
}

func (s *SQLStore) Sections(ctx context.Context) ([]entity.HelpSection, error) {
	rows, err := s.query(ctx, `SELECT id, key, label, button, sort_index FROM help_categories ORDER BY sort_index, id`)
	if err != nil {
		return nil, err
	}
	var (
		ids      []int64
		sections []entity.HelpSection
	)
	for rows.Next() {
		var (
			id  int64
			sec entity.HelpSection
		)
		if err := rows.Scan(&id, &sec.Key, &sec.Label, &sec.Button, &sec.SortIndex); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		sections = append(sections, sec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		qs, err := s.questions(ctx, id)
		if err != nil {
			return nil, err
		}
		sections[i].Questions = qs
	}
	return sections, nil
}

func (s *SQLStore) questions(ctx context.Context, categoryID int64) ([]entity.HelpQuestion, error) {
	rows, err := s.query(ctx,
		`SELECT question, answer FROM help_questions WHERE category_id = ? ORDER BY sort_index, id`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []entity.HelpQuestion
	for rows.Next() {
		var q entity.HelpQuestion
		if err := rows.Scan(&q.Question, &q.Answer); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) SectionByKey(ctx context.Context, key string) (*entity.HelpSection, error) {
	var (
		id  int64
		sec entity.HelpSection
	)
	err := s.queryRow(ctx, `SELECT id, key, label, button, sort_index FROM help_categories WHERE key = ?`, key).
		Scan(&id, &sec.Key, &sec.Label, &sec.Button, &sec.SortIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sec.Questions, err = s.questions(ctx, id); err != nil {
		return nil, err
	}
	return &sec, nil
}

// SaveProfile chat_id bo'yicha upsert
func (s *SQLStore) SaveProfile(ctx context.Context, p entity.Profile) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, rebind(s.dialect, `SELECT id FROM users WHERE chat_id = ?`), p.ChatID).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			rebind(s.dialect, `UPDATE users SET name = ?, age = ?, city = ? WHERE id = ?`),
			p.Name, p.Age, p.City, id)
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx,
			rebind(s.dialect, `INSERT INTO users (name, age, city, chat_id) VALUES (?, ?, ?, ?) RETURNING id`),
			p.Name, p.Age, p.City, p.ChatID).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("save profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) LoadProfile(ctx context.Context, chatID int64) (*entity.Profile, error) {
	p := entity.Profile{ChatID: chatID}
	err := s.queryRow(ctx, `SELECT id, name, age, city FROM users WHERE chat_id = ?`, chatID).
		Scan(&p.ID, &p.Name, &p.Age, &p.City)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLStore) SaveFeedback(ctx context.Context, f entity.Feedback) error {
	liked := 0
	if f.Liked {
		liked = 1
	}
	_, err := s.exec(ctx, `INSERT INTO feedback (question, answer, user_id, liked) VALUES (?, ?, ?, ?)`,
		f.Question, f.Answer, f.UserID, liked)
	return err
}

func (s *SQLStore) SaveAIDialog(ctx context.Context, d entity.AIDialog) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	var userID any
	if d.UserID > 0 {
		userID = d.UserID
	}
	_, err := s.exec(ctx, `INSERT INTO ai_dialogs (request_id, chat_id, user_id, question, answer, prompt, status, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ChatID, userID, d.Question, d.Answer, d.Prompt, d.Status, d.Error, d.CreatedAt.UTC())
	return err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
