package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

const (
	maxURLLength = 2048

	// maxCodeAttempts bounds the regenerate-on-collision loop. With a 62^3
	// code space a handful of consecutive collisions already means the
	// table is close to saturated, so give up rather than spin.
	maxCodeAttempts = 16

	defaultPerPage = 10
	maxPerPage     = 100
)

type BookmarkService struct {
	repo ports.Repository
}

func NewBookmarkService(repo ports.Repository) *BookmarkService {
	return &BookmarkService{repo: repo}
}

// Create validates the target URL, assigns a unique short code and persists
// the bookmark for userID. Short-code collisions with concurrent writers are
// resolved by retrying against the store's unique index.
func (s *BookmarkService) Create(ctx context.Context, userID int64, rawURL, body string) (*domain.Bookmark, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	// The original system refuses to shorten the same target twice.
	existing, err := s.repo.GetBookmarkByURL(ctx, target)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateShortCode()
		if err != nil {
			return nil, err
		}

		// Cheap pre-check; the unique index is the real arbiter.
		taken, err := s.repo.GetBookmarkByCode(ctx, code)
		if err != nil && !domain.IsNotFound(err) {
			return nil, err
		}
		if taken != nil {
			continue
		}

		now := time.Now()
		bookmark := &domain.Bookmark{
			URL:       target,
			Body:      body,
			ShortCode: code,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.repo.CreateBookmark(ctx, bookmark)
		if err == nil {
			return bookmark, nil
		}
		if errors.Is(err, domain.ErrDuplicateCode) {
			// Lost the race between the lookup and the insert; pick again.
			continue
		}
		return nil, err
	}

	return nil, domain.ErrCodeSpaceExhausted
}

func (s *BookmarkService) Get(ctx context.Context, userID, id int64) (*domain.Bookmark, error) {
	return s.repo.GetBookmark(ctx, id, userID)
}

func (s *BookmarkService) List(ctx context.Context, userID int64, page, perPage int) (*domain.BookmarkPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	offset := (page - 1) * perPage

	items, err := s.repo.ListBookmarks(ctx, userID, perPage, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))

	return &domain.BookmarkPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		Total:   total,
	}, nil
}

// Update changes url and body only; the short code and owner of a bookmark
// never change after creation.
func (s *BookmarkService) Update(ctx context.Context, userID, id int64, rawURL, body string) (*domain.Bookmark, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	bookmark, err := s.repo.GetBookmark(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	bookmark.URL = target
	bookmark.Body = body
	bookmark.UpdatedAt = time.Now()

	if err := s.repo.UpdateBookmark(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

func (s *BookmarkService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteBookmark(ctx, id, userID)
}

func (s *BookmarkService) Stats(ctx context.Context, userID int64) ([]domain.VisitStat, error) {
	return s.repo.VisitStats(ctx, userID)
}

// Resolve returns the target URL for code and records the visit. Anyone
// holding a valid code may resolve it; no ownership check applies here.
func (s *BookmarkService) Resolve(ctx context.Context, code string) (string, error) {
	if !validShortCode(code) {
		return "", domain.ErrNotFound
	}
	return s.repo.ResolveVisit(ctx, code)
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxURLLength {
		return "", &domain.FieldError{Field: "url", Message: "No valid URL"}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &domain.FieldError{Field: "url", Message: "No valid URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &domain.FieldError{Field: "url", Message: "No valid URL"}
	}
	if parsed.Host == "" {
		return "", &domain.FieldError{Field: "url", Message: "No valid URL"}
	}
	return parsed.String(), nil
}

var _ ports.BookmarkService = (*BookmarkService)(nil)
