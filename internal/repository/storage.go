package repository

import (
	"LinkPulse-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrURLNotFound     = errors.New("url not found")
	ErrShortCodeExists = errors.New("short code already exists")
)

type Storage interface {
	// URL methods
	CreateURL(ctx context.Context, rec *domain.URLRecord) error
	GetURLByShortCode(ctx context.Context, code string) (*domain.URLRecord, error)
	GetURLByID(ctx context.Context, id string) (*domain.URLRecord, error)
	ListUserURLs(ctx context.Context, userID string) ([]*domain.URLRecord, error)
	ListAllURLs(ctx context.Context) ([]*domain.URLRecord, error)
	UpdateURL(ctx context.Context, id string, upd domain.URLUpdate) (*domain.URLRecord, error)
	DeleteURL(ctx context.Context, id string) error
	ShortCodeExists(ctx context.Context, code string) (bool, error)

	// Click methods
	IncrementClicks(ctx context.Context, urlID string) error
	RecordClick(ctx context.Context, click *domain.ClickRecord) error
	ListClicksByURL(ctx context.Context, urlID string) ([]*domain.ClickRecord, error)
	ListAllClicks(ctx context.Context) ([]*domain.ClickRecord, error)
}
