package domain

import (
	"sort"
	"strings"
)

// Link match scores, highest wins.
const (
	ScoreTitleExact     = 100.0
	ScoreTitlePrefix    = 80.0
	ScoreTitleSubstring = 60.0
	ScoreURLSubstring   = 40.0
	ScoreAllWords       = 20.0
	ScorePositionBonus  = 10.0
)

// LinkCandidate is a link with its match score.
type LinkCandidate struct {
	Link  Link
	Score float64
}

// ScoreLink scores a link against a free-text query.
// Title and URL are compared case-insensitively; zero means no match.
func ScoreLink(query string, link Link) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	title := strings.ToLower(link.Title)
	u := strings.ToLower(link.URL)

	if q == title {
		return ScoreTitleExact
	}
	if strings.HasPrefix(title, q) {
		return ScoreTitlePrefix
	}
	if i := strings.Index(title, q); i >= 0 {
		// earlier hits rank higher
		return ScoreTitleSubstring + ScorePositionBonus*(1.0-float64(i)/float64(len(title)))
	}
	if strings.Contains(u, q) {
		return ScoreURLSubstring
	}

	words := strings.Fields(q)
	if len(words) > 1 {
		haystack := title + " " + u + " " + strings.ToLower(link.Note)
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				return 0
			}
		}
		return ScoreAllWords
	}
	return 0
}

// RankLinks returns the links matching query, best first. Links with equal
// scores keep their input order (newest first for store snapshots).
func RankLinks(query string, links []Link) []LinkCandidate {
	out := make([]LinkCandidate, 0, len(links))
	for _, l := range links {
		if s := ScoreLink(query, l); s > 0 {
			out = append(out, LinkCandidate{Link: l, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
