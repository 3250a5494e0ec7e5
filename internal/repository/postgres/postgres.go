package postgres

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- URL Methods ---

// CreateURL сохраняет новую запись. Повторно проверяет уникальность короткого
// кода: check-then-create на уровне сервиса не атомарен, финальная проверка здесь.
func (s *PostgresStorage) CreateURL(ctx context.Context, rec *domain.URLRecord) error {
	var existing domain.URLRecord
	err := s.db.WithContext(ctx).Where("short_code = ?", rec.ShortCode).First(&existing).Error
	if err == nil {
		return repository.ErrShortCodeExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to check short code existence", zap.String("short_code", rec.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to check short code: %w", err)
	}

	now := time.Now()
	rec.ID = uuid.NewString()
	rec.Clicks = 0
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		// Гонка с конкурентной вставкой разрешается уникальным индексом
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrShortCodeExists
		}
		s.log.Error("failed to create url record", zap.String("short_code", rec.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to create url: %w", err)
	}

	s.log.Info("created url record",
		zap.String("id", rec.ID),
		zap.String("short_code", rec.ShortCode),
		zap.String("user_id", rec.UserID))
	return nil
}

// GetURLByShortCode возвращает активную запись по коду.
// Неактивные записи считаются отсутствующими — это lookup для редиректа.
func (s *PostgresStorage) GetURLByShortCode(ctx context.Context, code string) (*domain.URLRecord, error) {
	var rec domain.URLRecord

	err := s.db.WithContext(ctx).Where("short_code = ? AND is_active = ?", code, true).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrURLNotFound
	}
	if err != nil {
		s.log.Error("failed to get url by short code", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return &rec, nil
}

func (s *PostgresStorage) GetURLByID(ctx context.Context, id string) (*domain.URLRecord, error) {
	var rec domain.URLRecord

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrURLNotFound
	}
	if err != nil {
		s.log.Error("failed to get url by id", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return &rec, nil
}

// ListUserURLs возвращает все ссылки пользователя, включая неактивные
func (s *PostgresStorage) ListUserURLs(ctx context.Context, userID string) ([]*domain.URLRecord, error) {
	var urls []*domain.URLRecord

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&urls).Error
	if err != nil {
		s.log.Error("failed to list user urls", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list user urls: %w", err)
	}

	return urls, nil
}

func (s *PostgresStorage) ListAllURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	var urls []*domain.URLRecord

	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&urls).Error
	if err != nil {
		s.log.Error("failed to list urls", zap.Error(err))
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}

	return urls, nil
}

// UpdateURL вливает частичное обновление и обновляет updated_at
func (s *PostgresStorage) UpdateURL(ctx context.Context, id string, upd domain.URLUpdate) (*domain.URLRecord, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if upd.OriginalURL != nil {
		updates["original_url"] = *upd.OriginalURL
	}
	if upd.CustomAlias != nil {
		updates["custom_alias"] = *upd.CustomAlias
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		updates["expires_at"] = *upd.ExpiresAt
	}

	result := s.db.WithContext(ctx).Model(&domain.URLRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		s.log.Error("failed to update url", zap.String("id", id), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update url: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrURLNotFound
	}

	return s.GetURLByID(ctx, id)
}

// DeleteURL удаляет запись и каскадно все ее клики в одной транзакции
func (s *PostgresStorage) DeleteURL(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&domain.URLRecord{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete url: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrURLNotFound
		}

		if err := tx.Where("url_id = ?", id).Delete(&domain.ClickRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrURLNotFound) {
			s.log.Error("failed to delete url", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.log.Info("deleted url record with clicks", zap.String("id", id))
	return nil
}

// ShortCodeExists проверяет код по всем записям, активным и неактивным
func (s *PostgresStorage) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.URLRecord{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check short code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return count > 0, nil
}

// --- Click Methods ---

// IncrementClicks увеличивает счетчик на единицу.
// Неизвестный urlID — тихий no-op.
func (s *PostgresStorage) IncrementClicks(ctx context.Context, urlID string) error {
	err := s.db.WithContext(ctx).Model(&domain.URLRecord{}).
		Where("id = ?", urlID).
		Updates(map[string]interface{}{
			"clicks":     gorm.Expr("clicks + 1"),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		s.log.Error("failed to increment clicks", zap.String("url_id", urlID), zap.Error(err))
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// RecordClick записывает клик и инкрементирует счетчик в одной транзакции:
// лог кликов и денормализованный счетчик не должны расходиться.
func (s *PostgresStorage) RecordClick(ctx context.Context, click *domain.ClickRecord) error {
	click.ID = uuid.NewString()
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}

		err := tx.Model(&domain.URLRecord{}).
			Where("id = ?", click.URLID).
			Updates(map[string]interface{}{
				"clicks":     gorm.Expr("clicks + 1"),
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to increment clicks: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to record click", zap.String("url_id", click.URLID), zap.Error(err))
		return err
	}

	s.log.Debug("recorded click", zap.String("url_id", click.URLID), zap.String("click_id", click.ID))
	return nil
}

func (s *PostgresStorage) ListClicksByURL(ctx context.Context, urlID string) ([]*domain.ClickRecord, error) {
	var clicks []*domain.ClickRecord

	err := s.db.WithContext(ctx).Where("url_id = ?", urlID).
		Order("clicked_at DESC").Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks by url", zap.String("url_id", urlID), zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}

func (s *PostgresStorage) ListAllClicks(ctx context.Context) ([]*domain.ClickRecord, error) {
	var clicks []*domain.ClickRecord

	err := s.db.WithContext(ctx).Order("clicked_at DESC").Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}
