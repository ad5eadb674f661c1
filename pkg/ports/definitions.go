package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// UserRepository defines storage operations for accounts
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// BookmarkRepository defines storage operations for bookmarks. Every method
// taking a userID is owner-scoped: rows belonging to other users behave as
// if they do not exist.
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	GetBookmarkByCode(ctx context.Context, code string) (*domain.Bookmark, error)
	GetBookmarkByURL(ctx context.Context, url string) (*domain.Bookmark, error)
	GetBookmark(ctx context.Context, id, userID int64) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, userID int64, limit, offset int) ([]domain.Bookmark, error)
	CountBookmarks(ctx context.Context, userID int64) (int64, error)
	UpdateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id, userID int64) error

	// ResolveVisit looks up the target URL for a code and commits a visit
	// increment in the same transaction.
	ResolveVisit(ctx context.Context, code string) (string, error)

	// Stats
	VisitStats(ctx context.Context, userID int64) ([]domain.VisitStat, error)

	Dump(ctx context.Context) ([]domain.Bookmark, error) // For migration
}

// Repository is the full persistence surface of the service.
type Repository interface {
	UserRepository
	BookmarkRepository
}

// BookmarkService defines the business logic operations
type BookmarkService interface {
	Create(ctx context.Context, userID int64, url, body string) (*domain.Bookmark, error)
	Get(ctx context.Context, userID, id int64) (*domain.Bookmark, error)
	List(ctx context.Context, userID int64, page, perPage int) (*domain.BookmarkPage, error)
	Update(ctx context.Context, userID, id int64, url, body string) (*domain.Bookmark, error)
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) ([]domain.VisitStat, error)

	// Resolve returns the target URL for a short code with a counted visit.
	Resolve(ctx context.Context, code string) (string, error)
}

// AuthService defines registration, login and token handling.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)

	// OAuthLogin issues an access token for an existing account matched by
	// verified email (OAuth callback path). Unknown emails fail.
	OAuthLogin(ctx context.Context, email string) (string, error)
	// VerifyAccessToken returns the user ID carried by a valid access token.
	VerifyAccessToken(token string) (int64, error)
}

// TokenPair carries the two tokens handed out at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Notifier delivers out-of-band notifications (mail). Implementations decide
// the transport; callers treat delivery as best-effort.
type Notifier interface {
	Notify(ctx context.Context, subject string, recipients []string, body string) error
}
