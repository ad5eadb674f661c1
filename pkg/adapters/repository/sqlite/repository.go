package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		body TEXT,
		short_code TEXT NOT NULL UNIQUE CHECK (length(short_code) = 3),
		visits INTEGER NOT NULL DEFAULT 0,
		user_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_short_code ON bookmarks(short_code);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);
	`
	_, err := db.Exec(query)
	return err
}

// isUniqueViolation matches the driver's constraint error text; both modernc
// and libsql surface SQLite's "UNIQUE constraint failed: <table>.<column>".
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// --- Users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (username, email, password_hash, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users.username") || isUniqueViolation(err, "users.email") {
			return fmt.Errorf("%w: user", domain.ErrConflict)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at
			  FROM users WHERE ` + where

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Bookmarks ---

func (r *SQLiteRepository) CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error {
	query := `INSERT INTO bookmarks (url, body, short_code, visits, user_id, created_at, updated_at)
			  VALUES (?, ?, ?, 0, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		bookmark.URL, bookmark.Body, bookmark.ShortCode, bookmark.UserID,
		bookmark.CreatedAt, bookmark.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookmarks.short_code") {
			return domain.ErrDuplicateCode
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	bookmark.ID = id
	return nil
}

func (r *SQLiteRepository) GetBookmarkByCode(ctx context.Context, code string) (*domain.Bookmark, error) {
	return r.getBookmark(ctx, "short_code = ?", code)
}

func (r *SQLiteRepository) GetBookmarkByURL(ctx context.Context, url string) (*domain.Bookmark, error) {
	return r.getBookmark(ctx, "url = ?", url)
}

func (r *SQLiteRepository) GetBookmark(ctx context.Context, id, userID int64) (*domain.Bookmark, error) {
	return r.getBookmark(ctx, "id = ? AND user_id = ?", id, userID)
}

func (r *SQLiteRepository) getBookmark(ctx context.Context, where string, args ...interface{}) (*domain.Bookmark, error) {
	query := `SELECT id, url, body, short_code, visits, user_id, created_at, updated_at
			  FROM bookmarks WHERE ` + where

	var b domain.Bookmark
	var body sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.URL, &body, &b.ShortCode, &b.Visits, &b.UserID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Body = body.String
	return &b, nil
}

func (r *SQLiteRepository) ListBookmarks(ctx context.Context, userID int64, limit, offset int) ([]domain.Bookmark, error) {
	query := `SELECT id, url, body, short_code, visits, user_id, created_at, updated_at
			  FROM bookmarks WHERE user_id = ?
			  ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []domain.Bookmark
	for rows.Next() {
		var b domain.Bookmark
		var body sql.NullString
		if err := rows.Scan(&b.ID, &b.URL, &body, &b.ShortCode, &b.Visits, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Body = body.String
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (r *SQLiteRepository) CountBookmarks(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// UpdateBookmark writes url, body and updated_at. The WHERE clause carries
// both id and user_id so a foreign bookmark updates zero rows and reads as
// not found.
func (r *SQLiteRepository) UpdateBookmark(ctx context.Context, bookmark *domain.Bookmark) error {
	query := `UPDATE bookmarks SET url = ?, body = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, query, bookmark.URL, bookmark.Body, bookmark.UpdatedAt, bookmark.ID, bookmark.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteBookmark(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResolveVisit resolves a code and counts the visit in one transaction. The
// increment is a single UPDATE expression, so concurrent resolutions of the
// same code cannot lose counts.
func (r *SQLiteRepository) ResolveVisit(ctx context.Context, code string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var url string
	err = tx.QueryRowContext(ctx, `SELECT url FROM bookmarks WHERE short_code = ?`, code).Scan(&url)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bookmarks SET visits = visits + 1 WHERE short_code = ?`, code); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return url, nil
}

func (r *SQLiteRepository) VisitStats(ctx context.Context, userID int64) ([]domain.VisitStat, error) {
	query := `SELECT id, url, short_code, visits FROM bookmarks
			  WHERE user_id = ? ORDER BY visits DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.VisitStat{}
	for rows.Next() {
		var s domain.VisitStat
		if err := rows.Scan(&s.ID, &s.URL, &s.ShortCode, &s.Visits); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Bookmark, error) {
	query := `SELECT id, url, body, short_code, visits, user_id, created_at, updated_at FROM bookmarks`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []domain.Bookmark
	for rows.Next() {
		var b domain.Bookmark
		var body sql.NullString
		if err := rows.Scan(&b.ID, &b.URL, &body, &b.ShortCode, &b.Visits, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Body = body.String
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ensure interface compliance
var _ ports.Repository = (*SQLiteRepository)(nil)
