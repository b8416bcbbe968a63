package service

import (
	"github.com/lespal/lespal_server/internal/model"
)

// Aggregate collapses raw songs sharing a normalized (title, artist)
// identity into one entry per pair. Deterministic for a given input
// order: output follows first-seen order of each distinct key, the
// status set is the union of statuses observed (legacy "recorded"
// collapsed into "studied"), and each auxiliary field keeps the first
// non-empty value encountered.
func Aggregate(songs []*model.Song) []*model.AggregatedSong {
	byKey := make(map[model.SongKey]*model.AggregatedSong, len(songs))
	order := make([]*model.AggregatedSong, 0, len(songs))

	for _, s := range songs {
		key := model.KeyFor(s.Title, s.Artist)

		agg, ok := byKey[key]
		if !ok {
			agg = &model.AggregatedSong{
				Key:    key,
				ID:     s.ID,
				Title:  s.Title,
				Artist: s.Artist,
			}
			byKey[key] = agg
			order = append(order, agg)
		}

		if s.Status != "" {
			status := model.CanonicalStatus(s.Status)
			if !agg.HasStatus(status) {
				agg.Statuses = append(agg.Statuses, status)
			}
		}
		if agg.ArtworkURL == "" {
			agg.ArtworkURL = s.ArtworkURL
		}
		if agg.TabsLink == "" {
			agg.TabsLink = s.TabsLink
		}
		if agg.VideoLink == "" {
			agg.VideoLink = s.VideoLink
		}
		if agg.RecordingLink == "" {
			agg.RecordingLink = s.RecordingLink
		}
		if agg.Notes == "" {
			agg.Notes = s.Notes
		}
	}

	return order
}

// GroupByStatus partitions aggregated songs over the fixed status
// vocabulary. A song carrying several statuses appears in every bucket
// it belongs to; statuses outside the vocabulary are dropped.
func GroupByStatus(songs []*model.AggregatedSong) map[string][]*model.AggregatedSong {
	groups := make(map[string][]*model.AggregatedSong, len(model.StatusVocabulary))
	for _, status := range model.StatusVocabulary {
		groups[status] = []*model.AggregatedSong{}
	}

	for _, s := range songs {
		for _, status := range s.Statuses {
			if bucket, ok := groups[status]; ok {
				groups[status] = append(bucket, s)
			}
		}
	}

	return groups
}

// Neglect detection parameters: how many recent lessons count as
// "recent" and how many neglected songs are surfaced at most.
const (
	neglectRecentLessons = 20
	neglectCap           = 3
)

// Neglected returns up to neglectCap rehearsing songs that were not a
// topic of any of the neglectRecentLessons most recent lessons.
// Lessons are expected newest first; songs keep their input order.
// Advisory only, nothing is written.
func Neglected(songs []*model.Song, lessons []*model.Lesson) []*model.Song {
	recent := lessons
	if len(recent) > neglectRecentLessons {
		recent = recent[:neglectRecentLessons]
	}

	practiced := make(map[string]struct{})
	for _, l := range recent {
		for _, id := range l.TopicIDs() {
			practiced[id] = struct{}{}
		}
	}

	var neglected []*model.Song
	for _, s := range songs {
		if model.CanonicalStatus(s.Status) != model.StatusRehearsing {
			continue
		}
		if _, ok := practiced[s.ID.String()]; ok {
			continue
		}
		neglected = append(neglected, s)
		if len(neglected) == neglectCap {
			break
		}
	}

	return neglected
}
