package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lespal/lespal_server/internal/client"
	"github.com/lespal/lespal_server/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// summaryLessonCount is how many of the most recent lessons feed the
// note summarization prompt.
const summaryLessonCount = 10

type lessonAnalyzer interface {
	Analyze(ctx context.Context, apiKey, prompt string) (*client.LessonAnalysis, error)
}

type InsightsService struct {
	songs    *SongService
	lessons  *LessonService
	secrets  *SecretService
	analyzer lessonAnalyzer
	logger   *zap.Logger
	now      func() time.Time
}

func NewInsightsService(
	songs *SongService,
	lessons *LessonService,
	secrets *SecretService,
	analyzer lessonAnalyzer,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{
		songs:    songs,
		lessons:  lessons,
		secrets:  secrets,
		analyzer: analyzer,
		logger:   logger,
		now:      time.Now,
	}
}

// RehearsedSong is one entry of the most-rehearsed ranking
type RehearsedSong struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// ArtistCount is one entry of the top-artists ranking
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// PracticeStats is computed locally from songs and lessons, without
// any AI involvement.
type PracticeStats struct {
	TopRehearsed []RehearsedSong `json:"top_rehearsed"`
	TopArtists   []ArtistCount   `json:"top_artists"`
	StatusCounts map[string]int  `json:"status_counts"`
	WeekStreak   int             `json:"week_streak"`
}

// Overview объединяет всё, что нужно главному экрану, за один вызов
type Overview struct {
	Aggregated []*model.AggregatedSong `json:"aggregated"`
	Neglected  []*model.Song           `json:"neglected"`
	Stats      *PracticeStats          `json:"stats"`
}

// GetOverview загружает песни и уроки параллельно (независимые
// ресурсы) и собирает сводку
func (s *InsightsService) GetOverview(ctx context.Context, actor ActingContext, force bool) (*Overview, error) {
	var (
		songs   []*model.Song
		lessons []*model.Lesson
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		songs, err = s.songs.List(gctx, actor, force)
		return err
	})
	g.Go(func() error {
		var err error
		lessons, err = s.lessons.List(gctx, actor, force)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		Aggregated: Aggregate(songs),
		Neglected:  Neglected(songs, lessons),
		Stats:      ComputeStats(songs, lessons, s.now()),
	}, nil
}

// Summarize отправляет заметки последних уроков в модель. Ключ
// берётся через цепочку резолвинга секретов; без ключа возвращается
// ErrNoAPIKey, и остальное приложение этого не замечает.
func (s *InsightsService) Summarize(ctx context.Context, actor ActingContext) (*client.LessonAnalysis, error) {
	apiKey, err := s.secrets.ResolveEffectiveSecret(ctx, actor, model.SecretGeminiAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	lessons, err := s.lessons.List(ctx, actor, false)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, ErrNoLessons
	}

	sorted := make([]*model.Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > summaryLessonCount {
		sorted = sorted[:summaryLessonCount]
	}

	analysis, err := s.analyzer.Analyze(ctx, apiKey, buildAnalysisPrompt(sorted))
	if err != nil {
		s.logger.Warn("Lesson analysis failed", zap.Error(err))
		return nil, fmt.Errorf("analyze lessons: %w", err)
	}

	return analysis, nil
}

// Ошибки деградации фичи: не показываются как сбои, клиент просто
// прячет блок с выводами
var (
	ErrNoAPIKey  = fmt.Errorf("no api key configured")
	ErrNoLessons = fmt.Errorf("no lessons to analyze")
)

func buildAnalysisPrompt(lessons []*model.Lesson) string {
	notes := make([]string, 0, len(lessons))
	for _, l := range lessons {
		notes = append(notes, fmt.Sprintf("Date: %s\nNotes: %s", l.Date.Format("2006-01-02"), l.Notes))
	}

	return fmt.Sprintf(`Instructions:
1. Analyze the last %d guitar lesson notes.
2. Return a JSON object with this exact structure:
{
  "summary": "1-2 sentences in Russian summarizing progress.",
  "bottlenecks": ["3-4 specific technical issues in Russian"]
}

Notes:
%s`, summaryLessonCount, strings.Join(notes, "\n---\n"))
}

// ComputeStats считает локальную статистику практики
func ComputeStats(songs []*model.Song, lessons []*model.Lesson, now time.Time) *PracticeStats {
	// Счётчик репетиций по темам уроков
	rehearsalCounts := make(map[string]int)
	for _, l := range lessons {
		for _, id := range l.TopicIDs() {
			rehearsalCounts[id]++
		}
	}

	titleByID := make(map[string]string, len(songs))
	for _, s := range songs {
		titleByID[s.ID.String()] = s.Title
	}

	topRehearsed := topCounts(rehearsalCounts, 3)
	rehearsed := make([]RehearsedSong, 0, len(topRehearsed))
	for _, entry := range topRehearsed {
		title, ok := titleByID[entry.key]
		if !ok {
			title = "Unknown"
		}
		rehearsed = append(rehearsed, RehearsedSong{Title: title, Count: entry.count})
	}

	artistCounts := make(map[string]int)
	statusCounts := make(map[string]int)
	for _, s := range songs {
		if s.Artist != "" {
			artistCounts[s.Artist]++
		}
		if s.Status != "" {
			statusCounts[model.CanonicalStatus(s.Status)]++
		}
	}

	topArtistEntries := topCounts(artistCounts, 5)
	artists := make([]ArtistCount, 0, len(topArtistEntries))
	for _, entry := range topArtistEntries {
		artists = append(artists, ArtistCount{Artist: entry.key, Count: entry.count})
	}

	return &PracticeStats{
		TopRehearsed: rehearsed,
		TopArtists:   artists,
		StatusCounts: statusCounts,
		WeekStreak:   weekStreak(lessons, now),
	}
}

type countEntry struct {
	key   string
	count int
}

func topCounts(counts map[string]int, limit int) []countEntry {
	entries := make([]countEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, countEntry{key: k, count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// weekStreak считает, сколько недель подряд были уроки. Серия
// привязана к текущей или прошлой неделе: пропуск двух недель её
// обнуляет.
func weekStreak(lessons []*model.Lesson, now time.Time) int {
	weeks := make(map[string]struct{})
	for _, l := range lessons {
		if !l.Date.IsZero() {
			weeks[isoWeekKey(l.Date)] = struct{}{}
		}
	}
	if len(weeks) == 0 {
		return 0
	}

	anchor := now
	if _, ok := weeks[isoWeekKey(anchor)]; !ok {
		anchor = now.AddDate(0, 0, -7)
		if _, ok := weeks[isoWeekKey(anchor)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := weeks[isoWeekKey(anchor)]; !ok {
			break
		}
		streak++
		anchor = anchor.AddDate(0, 0, -7)
	}

	return streak
}
