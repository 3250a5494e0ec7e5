package service

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
)

type ShortenerService struct {
	storage repository.Storage
	config  *config.Shortener
}

func NewShortener(storage repository.Storage, cfg *config.Shortener) *ShortenerService {
	return &ShortenerService{
		storage: storage,
		config:  cfg,
	}
}

// Shorten присваивает ссылке короткий код и сохраняет ее.
//
// Кастомный алиас используется как код напрямую: занятый алиас — ошибка
// ErrShortCodeExists, выбор другого остается за вызывающим. Без алиаса код
// генерируется случайно; check-then-create не атомарен, поэтому CreateURL
// остается финальным арбитром, и проигранная гонка на сгенерированном коде
// просто запускает следующую попытку.
func (s *ShortenerService) Shorten(ctx context.Context, rec *domain.URLRecord, customAlias *string) (*domain.URLRecord, error) {
	if customAlias != nil && *customAlias != "" {
		rec.ShortCode = *customAlias
		rec.CustomAlias = customAlias

		exists, err := s.storage.ShortCodeExists(ctx, rec.ShortCode)
		if err != nil {
			return nil, fmt.Errorf("failed to check custom alias: %w", err)
		}
		if exists {
			return nil, repository.ErrShortCodeExists
		}

		if err := s.storage.CreateURL(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	for attempt := 0; attempt < s.config.MaxAttempts; attempt++ {
		code, err := s.GenerateShortCode()
		if err != nil {
			return nil, err
		}

		available, err := s.IsShortCodeAvailable(ctx, code)
		if err != nil {
			return nil, err
		}
		if !available {
			continue
		}

		rec.ShortCode = code
		err = s.storage.CreateURL(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, repository.ErrShortCodeExists) {
			// Кто-то занял код между проверкой и вставкой
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to find a free short code after %d attempts", s.config.MaxAttempts)
}

// GenerateShortCode генерирует случайный код; уникальность не гарантирует
func (s *ShortenerService) GenerateShortCode() (string, error) {
	code, err := random.NewRandomString(s.config.CodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}
	return code, nil
}

// IsShortCodeAvailable истинно, если код не занят ни одной записью,
// активной или нет
func (s *ShortenerService) IsShortCodeAvailable(ctx context.Context, code string) (bool, error) {
	exists, err := s.storage.ShortCodeExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to check short code availability: %w", err)
	}
	return !exists, nil
}
