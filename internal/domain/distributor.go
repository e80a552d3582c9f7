package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SiteColumns is the fixed number of columns site collections are spread over.
const SiteColumns = 4

// Distribute turns the site-collection list into a branch of at most
// SiteColumns untitled columns, sorted by display text and front-loaded:
// every column but the last non-empty one holds ceil(n/SiteColumns) links.
// Empty columns are omitted.
func Distribute(sites []SiteEntry) MenuBranch {
	valid := make([]SiteEntry, 0, len(sites))
	for _, site := range sites {
		if strings.TrimSpace(site.DisplayText) == "" || strings.TrimSpace(site.URL) == "" {
			continue
		}
		valid = append(valid, site)
	}

	// Collator keeps internal buffers, so one per call.
	c := collate.New(language.Und)
	sort.SliceStable(valid, func(i, j int) bool {
		return c.CompareString(valid[i].DisplayText, valid[j].DisplayText) < 0
	})

	total := len(valid)
	branch := MenuBranch{Columns: []MenuColumn{}}
	if total == 0 {
		return branch
	}

	perColumn := (total + SiteColumns - 1) / SiteColumns
	for i := 0; i < SiteColumns; i++ {
		start := i * perColumn
		if start >= total {
			break
		}
		end := min(start+perColumn, total)

		col := MenuColumn{Title: "", Items: make([]LinkItem, 0, end-start)}
		for _, site := range valid[start:end] {
			col.Items = append(col.Items, LinkItem{Title: site.DisplayText, Href: site.URL})
		}
		branch.Columns = append(branch.Columns, col)
	}

	return branch
}
