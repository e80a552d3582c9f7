package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

var errInvalidLimit = errors.New("limit must be a positive integer")

type searchResult struct {
	Title  string  `json:"title"`
	Href   string  `json:"href"`
	Top    string  `json:"top"`
	Column string  `json:"column,omitempty"`
	Score  float64 `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

// Search ranks the links of the assembled menu against q.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		candidates := domain.RankLinks(query, d.MenuIndex.Tree())
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}

		results := make([]searchResult, 0, len(candidates))
		for _, c := range candidates {
			results = append(results, searchResult{
				Title:  c.Link.Title,
				Href:   c.Link.Href,
				Top:    c.Top,
				Column: c.Column,
				Score:  c.Score,
			})
		}

		d.Logger.Debug("menu search",
			logger.String("query", query),
			logger.Int("results", len(results)))

		writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results})
	}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultSearchLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errInvalidLimit
	}
	if n > maxSearchLimit {
		n = maxSearchLimit
	}
	return n, nil
}
