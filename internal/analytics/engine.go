package analytics

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	// recentWindowDays is the click window used for RecentClicks and the
	// daily histogram
	recentWindowDays = 30
	// topURLsLimit caps the top-performing ranking
	topURLsLimit = 10
	dateLayout   = "2006-01-02"
)

// Summary is the computed dashboard payload.
type Summary struct {
	TotalURLs    int64               `json:"total_urls"`
	TotalClicks  int64               `json:"total_clicks"`
	ActiveURLs   int64               `json:"active_urls"`
	RecentClicks int64               `json:"recent_clicks"`
	TopURLs      []*domain.URLRecord `json:"top_urls"`
	DailyClicks  []DayClicks         `json:"daily_clicks"`
}

// DayClicks is one calendar-day bucket of the daily histogram.
type DayClicks struct {
	Date   string `json:"date"` // YYYY-MM-DD, UTC
	Clicks int64  `json:"clicks"`
}

// Engine derives summary statistics from the current store contents.
// It holds no state of its own and never writes.
type Engine struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewEngine(storage repository.Storage, log *zap.Logger) *Engine {
	return &Engine{
		storage: storage,
		log:     log,
	}
}

// Summarize computes the dashboard for one user, or for the whole store when
// userID is empty.
//
// TotalClicks sums the denormalized per-record counters, not the click log;
// the store keeps the two consistent. RecentClicks and DailyClicks are
// always computed over ALL clicks in the store regardless of userID — that
// scope mismatch is inherited from the reference behavior and kept on
// purpose.
func (e *Engine) Summarize(ctx context.Context, userID string) (*Summary, error) {
	var (
		urls []*domain.URLRecord
		err  error
	)
	if userID != "" {
		urls, err = e.storage.ListUserURLs(ctx, userID)
	} else {
		urls, err = e.storage.ListAllURLs(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load urls: %w", err)
	}

	allClicks, err := e.storage.ListAllClicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	summary := &Summary{
		TotalURLs: int64(len(urls)),
	}
	for _, u := range urls {
		summary.TotalClicks += u.Clicks
		if u.IsActive {
			summary.ActiveURLs++
		}
	}

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -recentWindowDays)

	recent := make([]*domain.ClickRecord, 0, len(allClicks))
	for _, c := range allClicks {
		clickedAt := c.ClickedAt.UTC()
		if !clickedAt.Before(windowStart) && !clickedAt.After(now) {
			recent = append(recent, c)
		}
	}
	summary.RecentClicks = int64(len(recent))

	summary.TopURLs = topURLs(urls)
	summary.DailyClicks = dailyClicks(recent, now)

	e.log.Debug("computed analytics summary",
		zap.String("user_id", userID),
		zap.Int64("total_urls", summary.TotalURLs),
		zap.Int64("recent_clicks", summary.RecentClicks))

	return summary, nil
}

// topURLs ranks the working set by click count, descending, dropping
// records that were never clicked.
func topURLs(urls []*domain.URLRecord) []*domain.URLRecord {
	top := make([]*domain.URLRecord, 0, len(urls))
	for _, u := range urls {
		if u.Clicks > 0 {
			top = append(top, u)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Clicks > top[j].Clicks
	})
	if len(top) > topURLsLimit {
		top = top[:topURLsLimit]
	}
	return top
}

// dailyClicks buckets the recent clicks into exactly 30 calendar days
// (UTC), oldest first, today included. Empty days report zero.
func dailyClicks(recent []*domain.ClickRecord, now time.Time) []DayClicks {
	counts := make(map[string]int64, recentWindowDays)
	order := make([]string, 0, recentWindowDays)
	for i := recentWindowDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		counts[date] = 0
		order = append(order, date)
	}

	for _, c := range recent {
		date := c.ClickedAt.UTC().Format(dateLayout)
		if _, ok := counts[date]; ok {
			counts[date]++
		}
	}

	out := make([]DayClicks, 0, recentWindowDays)
	for _, date := range order {
		out = append(out, DayClicks{Date: date, Clicks: counts[date]})
	}
	return out
}
