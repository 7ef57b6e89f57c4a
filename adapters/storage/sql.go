package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/errors"
	"filmscope/internal/logging"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Timestamps are stored as unix nanoseconds so both drivers scan them the
// same way.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id         VARCHAR(36) PRIMARY KEY,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		platform   VARCHAR(32) NOT NULL,
		type       VARCHAR(32) NOT NULL,
		status     VARCHAR(32) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns (created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		seq       INTEGER PRIMARY KEY,
		name      TEXT NOT NULL,
		email     TEXT NOT NULL DEFAULT '',
		role      TEXT NOT NULL DEFAULT '',
		outlet    TEXT NOT NULL DEFAULT '',
		platform  TEXT NOT NULL DEFAULT '',
		followers BIGINT NOT NULL DEFAULT 0,
		notes     TEXT NOT NULL DEFAULT ''
	)`,
}

// SQLiteDSN builds a modernc sqlite DSN for a database file
func SQLiteDSN(path string) string {
	return path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(normal)"
}

type campaignRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Platform  string `db:"platform"`
	Type      string `db:"type"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r campaignRow) campaign() campaign.Campaign {
	return campaign.Campaign{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Platform:  campaign.Platform(r.Platform),
		Type:      campaign.Type(r.Type),
		Status:    campaign.Status(r.Status),
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}

type contactRow struct {
	Seq       int64  `db:"seq"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Role      string `db:"role"`
	Outlet    string `db:"outlet"`
	Platform  string `db:"platform"`
	Followers int64  `db:"followers"`
	Notes     string `db:"notes"`
}

// SQLStore keeps campaigns and contacts in SQLite or PostgreSQL
type SQLStore struct {
	db      *sqlx.DB
	backend Backend
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSQLStore opens the database, checks the connection and applies the
// schema.
func NewSQLStore(ctx context.Context, backend Backend, dsn string, maxOpenConns int) (*SQLStore, error) {
	driver := "postgres"
	if backend == BackendSQLite {
		driver = "sqlite"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}

	// SQLite allows a single writer and ":memory:" databases live in one
	// connection, so the pool is pinned to that connection.
	if backend == BackendSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if maxOpenConns > 0 {
			db.SetMaxOpenConns(maxOpenConns)
			db.SetMaxIdleConns(maxOpenConns)
		}
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Storage("failed to ping database", err)
	}

	s := &SQLStore{
		db:      db,
		backend: backend,
		timeout: 10 * time.Second,
		now:     nowFunc,
		logger:  logging.Named("storage").With(zap.String("backend", string(backend))),
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Storage("failed to apply schema", err)
		}
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, c *campaign.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c.ID = uuid.New().String()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt

	query := s.db.Rebind(`
		INSERT INTO campaigns (id, title, content, platform, type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Content, string(c.Platform), string(c.Type), string(c.Status),
		c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano())
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.Storage("duplicate campaign id", err)
		}
		return errors.Storage("failed to insert campaign", err)
	}

	s.logger.Debug("inserted campaign", zap.String("id", c.ID))
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row campaignRow
	query := s.db.Rebind(`
		SELECT id, title, content, platform, type, status, created_at, updated_at
		FROM campaigns WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, errors.Storage("failed to get campaign", err)
	}

	c := row.campaign()
	return &c, nil
}

func (s *SQLStore) List(ctx context.Context, filter campaign.Filter) ([]campaign.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, string(filter.Platform))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, title, content, platform, type, status, created_at, updated_at FROM campaigns`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	// OFFSET without LIMIT is not portable; page in memory then.
	pageInMemory := filter.Limit <= 0 && filter.Offset > 0
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, filter.Limit, offset)
	}

	var rows []campaignRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		return nil, errors.Storage("failed to list campaigns", err)
	}

	results := make([]campaign.Campaign, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.campaign())
	}
	if pageInMemory {
		results = filter.Page(results)
	}
	return results, nil
}

func (s *SQLStore) Update(ctx context.Context, c *campaign.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt int64
	err = tx.GetContext(ctx, &createdAt, tx.Rebind(`SELECT created_at FROM campaigns WHERE id = ?`), c.ID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return notFound(c.ID)
	}
	if err != nil {
		return errors.Storage("failed to update campaign", err)
	}

	c.CreatedAt = time.Unix(0, createdAt).UTC()
	c.UpdatedAt = s.now()

	query := tx.Rebind(`
		UPDATE campaigns
		SET title = ?, content = ?, platform = ?, type = ?, status = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query,
		c.Title, c.Content, string(c.Platform), string(c.Type), string(c.Status),
		c.UpdatedAt.UnixNano(), c.ID); err != nil {
		return errors.Storage("failed to update campaign", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit campaign update", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM campaigns WHERE id = ?`), id)
	if err != nil {
		return errors.Storage("failed to delete campaign", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Storage("failed to delete campaign", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLStore) ReplaceContacts(ctx context.Context, list []contacts.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout*time.Duration(len(list)/500+1))
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return errors.Storage("failed to clear contacts", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO contacts (seq, name, email, role, outlet, platform, followers, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return errors.Storage("failed to prepare statement", err)
	}
	defer stmt.Close()

	for i, c := range list {
		if _, err := stmt.ExecContext(ctx, i+1, c.Name, c.Email, c.Role, c.Outlet, c.Platform, c.Followers, c.Notes); err != nil {
			return errors.Storage("failed to insert contact", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit contacts", err)
	}
	s.logger.Debug("replaced contacts", zap.Int("count", len(list)))
	return nil
}

func (s *SQLStore) ListContacts(ctx context.Context) ([]contacts.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []contactRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT seq, name, email, role, outlet, platform, followers, notes
		FROM contacts ORDER BY seq`); err != nil {
		return nil, errors.Storage("failed to list contacts", err)
	}

	list := make([]contacts.Contact, 0, len(rows))
	for _, r := range rows {
		list = append(list, contacts.Contact{
			Name:      r.Name,
			Email:     r.Email,
			Role:      r.Role,
			Outlet:    r.Outlet,
			Platform:  r.Platform,
			Followers: int(r.Followers),
			Notes:     r.Notes,
		})
	}
	return list, nil
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
