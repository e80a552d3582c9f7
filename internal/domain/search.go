package domain

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier substring is better)
	ScorePositionBonus = 10.0

	// Exact title match bonus (huge boost)
	ScoreExactTitleBonus = 200.0
)

// LinkCandidate is a link of the assembled tree matching a search query.
type LinkCandidate struct {
	Link   LinkItem `json:"link"`
	Top    string   `json:"top"`              // title of the owning top item
	Column string   `json:"column,omitempty"` // column title, empty for top-level links
	Score  float64  `json:"score"`
}

// ScoreLink calculates the match score of a link title against a query.
func ScoreLink(query, title string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	title = strings.ToLower(strings.TrimSpace(title))
	if query == "" || title == "" {
		return 0.0
	}

	// Exact match (highest score)
	if query == title {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	// Prefix match
	if strings.HasPrefix(title, query) {
		return ScorePrefixMatch
	}

	// Substring match
	if index := strings.Index(title, query); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(title)))
		return ScoreSubstringMatch + substringBonus
	}

	// Every query word appears somewhere in the title
	words := strings.Fields(query)
	if len(words) > 1 {
		allMatch := true
		for _, word := range words {
			if !strings.Contains(title, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	// Subsequence match, weighted by how many characters were skipped
	distance := fuzzy.RankMatchNormalizedFold(query, title)
	if distance < 0 {
		return 0.0
	}
	similarity := 1.0 - float64(distance)/float64(utf8.RuneCountInString(title))
	if similarity < 0.5 {
		return 0.0
	}
	return ScoreFuzzyMatch * similarity
}

// RankLinks scores every navigable link of tree against query and returns
// the matches, best first. Ties keep tree order. Placeholder links are not
// navigable and never returned.
func RankLinks(query string, tree NavTree) []LinkCandidate {
	var candidates []LinkCandidate

	consider := func(link LinkItem, top, column string) {
		if link.Href == "" || link.Href == PlaceholderHref {
			return
		}
		score := ScoreLink(query, link.Title)
		if score == 0.0 {
			return
		}
		candidates = append(candidates, LinkCandidate{
			Link:   link,
			Top:    top,
			Column: column,
			Score:  score,
		})
	}

	for _, item := range tree {
		if item.Branch == nil {
			consider(LinkItem{Title: item.Title, Href: item.Href}, item.Title, "")
			continue
		}
		for _, col := range item.Branch.Columns {
			for _, link := range col.Items {
				consider(link, item.Title, col.Title)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}
