package memory

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStorage хранит обе коллекции в памяти. Каждая мутация — критическая
// секция под одним мьютексом, читатели получают копии записей.
type MemStorage struct {
	mu     sync.RWMutex
	urls   map[string]*domain.URLRecord   // id -> record
	clicks map[string]*domain.ClickRecord // id -> record
	byCode map[string]string              // short code -> url id
}

func New() *MemStorage {
	return &MemStorage{
		urls:   make(map[string]*domain.URLRecord),
		clicks: make(map[string]*domain.ClickRecord),
		byCode: make(map[string]string),
	}
}

// --- URL Methods ---

func (s *MemStorage) CreateURL(_ context.Context, rec *domain.URLRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Уникальность проверяется по всем записям, включая неактивные
	if _, exists := s.byCode[rec.ShortCode]; exists {
		return repository.ErrShortCodeExists
	}

	now := time.Now()
	rec.ID = uuid.NewString()
	rec.Clicks = 0
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	s.urls[stored.ID] = &stored
	s.byCode[stored.ShortCode] = stored.ID
	return nil
}

func (s *MemStorage) GetURLByShortCode(_ context.Context, code string) (*domain.URLRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	rec := s.urls[id]
	// Неактивные записи для редиректа не существуют
	if !rec.IsActive {
		return nil, repository.ErrURLNotFound
	}
	out := *rec
	return &out, nil
}

func (s *MemStorage) GetURLByID(_ context.Context, id string) (*domain.URLRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.urls[id]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	out := *rec
	return &out, nil
}

func (s *MemStorage) ListUserURLs(_ context.Context, userID string) ([]*domain.URLRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.URLRecord
	for _, rec := range s.urls {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sortURLsNewestFirst(out)
	return out, nil
}

func (s *MemStorage) ListAllURLs(_ context.Context) ([]*domain.URLRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.URLRecord, 0, len(s.urls))
	for _, rec := range s.urls {
		cp := *rec
		out = append(out, &cp)
	}
	sortURLsNewestFirst(out)
	return out, nil
}

func (s *MemStorage) UpdateURL(_ context.Context, id string, upd domain.URLUpdate) (*domain.URLRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.urls[id]
	if !ok {
		return nil, repository.ErrURLNotFound
	}

	if upd.OriginalURL != nil {
		rec.OriginalURL = *upd.OriginalURL
	}
	if upd.CustomAlias != nil {
		rec.CustomAlias = upd.CustomAlias
	}
	if upd.IsActive != nil {
		rec.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		rec.ExpiresAt = upd.ExpiresAt
	}
	rec.UpdatedAt = time.Now()

	out := *rec
	return &out, nil
}

func (s *MemStorage) DeleteURL(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.urls[id]
	if !ok {
		return repository.ErrURLNotFound
	}
	delete(s.byCode, rec.ShortCode)
	delete(s.urls, id)

	// Каскадное удаление кликов в той же критической секции
	for clickID, click := range s.clicks {
		if click.URLID == id {
			delete(s.clicks, clickID)
		}
	}
	return nil
}

func (s *MemStorage) ShortCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCode[code]
	return ok, nil
}

// --- Click Methods ---

func (s *MemStorage) IncrementClicks(_ context.Context, urlID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrementClicksLocked(urlID)
	return nil
}

// RecordClick сохраняет клик и инкрементирует счетчик владельца одной
// критической секцией. Нулевой ClickedAt заменяется текущим временем.
func (s *MemStorage) RecordClick(_ context.Context, click *domain.ClickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	click.ID = uuid.NewString()
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}

	stored := *click
	s.clicks[stored.ID] = &stored
	s.incrementClicksLocked(stored.URLID)
	return nil
}

func (s *MemStorage) ListClicksByURL(_ context.Context, urlID string) ([]*domain.ClickRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ClickRecord
	for _, click := range s.clicks {
		if click.URLID == urlID {
			cp := *click
			out = append(out, &cp)
		}
	}
	sortClicksNewestFirst(out)
	return out, nil
}

func (s *MemStorage) ListAllClicks(_ context.Context) ([]*domain.ClickRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ClickRecord, 0, len(s.clicks))
	for _, click := range s.clicks {
		cp := *click
		out = append(out, &cp)
	}
	sortClicksNewestFirst(out)
	return out, nil
}

// incrementClicksLocked молча игнорирует неизвестный urlID
func (s *MemStorage) incrementClicksLocked(urlID string) {
	if rec, ok := s.urls[urlID]; ok {
		rec.Clicks++
		rec.UpdatedAt = time.Now()
	}
}

func sortURLsNewestFirst(urls []*domain.URLRecord) {
	sort.Slice(urls, func(i, j int) bool {
		return urls[i].CreatedAt.After(urls[j].CreatedAt)
	})
}

func sortClicksNewestFirst(clicks []*domain.ClickRecord) {
	sort.Slice(clicks, func(i, j int) bool {
		return clicks[i].ClickedAt.After(clicks[j].ClickedAt)
	})
}
