package memory

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestURL(userID, code string) *domain.URLRecord {
	return &domain.URLRecord{
		UserID:      userID,
		OriginalURL: "https://example.com/very/long/path",
		ShortCode:   code,
		IsActive:    true,
	}
}

func TestCreateURL_AssignsIDAndTimestamps(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, int64(0), rec.Clicks)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestCreateURL_DuplicateShortCode(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateURL(ctx, newTestURL("user-1", "x")))

	err := s.CreateURL(ctx, newTestURL("user-2", "x"))
	require.ErrorIs(t, err, repository.ErrShortCodeExists)

	// The failed create must not leave a second record behind
	all, err := s.ListAllURLs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user-1", all[0].UserID)
}

func TestCreateURL_DuplicateAgainstInactiveRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "taken1")
	require.NoError(t, s.CreateURL(ctx, rec))

	inactive := false
	_, err := s.UpdateURL(ctx, rec.ID, domain.URLUpdate{IsActive: &inactive})
	require.NoError(t, err)

	// Uniqueness is checked against all records, not just active ones
	err = s.CreateURL(ctx, newTestURL("user-2", "taken1"))
	assert.ErrorIs(t, err, repository.ErrShortCodeExists)
}

func TestGetURLByShortCode_SkipsInactive(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	got, err := s.GetURLByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	inactive := false
	_, err = s.UpdateURL(ctx, rec.ID, domain.URLUpdate{IsActive: &inactive})
	require.NoError(t, err)

	_, err = s.GetURLByShortCode(ctx, "abc123")
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
}

func TestListUserURLs_NewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := newTestURL("user-1", "one")
	require.NoError(t, s.CreateURL(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := newTestURL("user-1", "two")
	require.NoError(t, s.CreateURL(ctx, second))
	require.NoError(t, s.CreateURL(ctx, newTestURL("user-2", "other")))

	urls, err := s.ListUserURLs(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "two", urls[0].ShortCode)
	assert.Equal(t, "one", urls[1].ShortCode)
}

func TestUpdateURL_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	time.Sleep(5 * time.Millisecond)
	updated, err := s.UpdateURL(ctx, rec.ID, domain.URLUpdate{})
	require.NoError(t, err)

	assert.True(t, updated.UpdatedAt.After(rec.UpdatedAt))
	assert.Equal(t, rec.OriginalURL, updated.OriginalURL)
	assert.Equal(t, rec.ShortCode, updated.ShortCode)
	assert.Equal(t, rec.IsActive, updated.IsActive)
	assert.Equal(t, rec.Clicks, updated.Clicks)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
}

func TestUpdateURL_NotFound(t *testing.T) {
	s := New()

	_, err := s.UpdateURL(context.Background(), "missing", domain.URLUpdate{})
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
}

func TestRecordClick_IncrementsCounterAndStoresClick(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	ua := "Mozilla/5.0"
	require.NoError(t, s.RecordClick(ctx, &domain.ClickRecord{URLID: rec.ID, UserAgent: &ua}))
	require.NoError(t, s.RecordClick(ctx, &domain.ClickRecord{URLID: rec.ID}))

	got, err := s.GetURLByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)

	clicks, err := s.ListClicksByURL(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, clicks, 2)
	for _, c := range clicks {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, rec.ID, c.URLID)
		assert.False(t, c.ClickedAt.IsZero())
	}
}

func TestIncrementClicks_UnknownIDIsSilentNoop(t *testing.T) {
	s := New()
	assert.NoError(t, s.IncrementClicks(context.Background(), "missing"))
}

func TestDeleteURL_CascadesClicks(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))
	require.NoError(t, s.RecordClick(ctx, &domain.ClickRecord{URLID: rec.ID}))
	require.NoError(t, s.RecordClick(ctx, &domain.ClickRecord{URLID: rec.ID}))

	other := newTestURL("user-1", "other1")
	require.NoError(t, s.CreateURL(ctx, other))
	require.NoError(t, s.RecordClick(ctx, &domain.ClickRecord{URLID: other.ID}))

	require.NoError(t, s.DeleteURL(ctx, rec.ID))

	_, err := s.GetURLByShortCode(ctx, "abc123")
	assert.ErrorIs(t, err, repository.ErrURLNotFound)

	clicks, err := s.ListClicksByURL(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, clicks)

	// Clicks of other records survive the cascade
	remaining, err := s.ListClicksByURL(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteURL_NotFound(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.DeleteURL(context.Background(), "missing"), repository.ErrURLNotFound)
}

func TestShortCodeExists_SeesInactiveRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	inactive := false
	_, err := s.UpdateURL(ctx, rec.ID, domain.URLUpdate{IsActive: &inactive})
	require.NoError(t, err)

	exists, err := s.ShortCodeExists(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ShortCodeExists(ctx, "free")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListClicksByURL_NewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	now := time.Now()
	older := &domain.ClickRecord{URLID: rec.ID, ClickedAt: now.Add(-time.Hour)}
	newer := &domain.ClickRecord{URLID: rec.ID, ClickedAt: now}
	require.NoError(t, s.RecordClick(ctx, older))
	require.NoError(t, s.RecordClick(ctx, newer))

	clicks, err := s.ListClicksByURL(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, clicks, 2)
	assert.Equal(t, newer.ID, clicks[0].ID)
	assert.Equal(t, older.ID, clicks[1].ID)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newTestURL("user-1", "abc123")
	require.NoError(t, s.CreateURL(ctx, rec))

	got, err := s.GetURLByID(ctx, rec.ID)
	require.NoError(t, err)
	got.OriginalURL = "mutated"

	again, err := s.GetURLByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/very/long/path", again.OriginalURL)
}
