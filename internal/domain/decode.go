package domain

import (
	"strconv"
	"strings"
)

// Field aliases accepted on loosely typed source objects.
var (
	titleKeys      = []string{"Title", "title"}
	levelKeys      = []string{"Level", "level", "LevelTag", "levelTag"}
	urlKeys        = []string{"Url", "url", "URL", "Href", "href"}
	parentKeys     = []string{"Parent", "parent", "ParentTitle", "parentTitle"}
	orderKeys      = []string{"Order", "order"}
	expandableKeys = []string{"HasMegaMenu", "hasMegaMenu", "MegaMenu", "megaMenu", "Expandable", "expandable"}

	siteTextKeys  = []string{"Text", "text"}
	siteValueKeys = []string{"Value", "value"}
)

// DecodeNavRecord converts one generic source object (decoded JSON or YAML)
// into a NavRecord. It returns false when the object has no recognizable
// level, in which case the record is skipped by the caller.
func DecodeNavRecord(m map[string]any) (NavRecord, bool) {
	level := parseLevel(lookup(m, levelKeys))
	if level == LevelUnknown {
		return NavRecord{}, false
	}

	return NavRecord{
		Title:       asString(lookup(m, titleKeys)),
		Level:       level,
		URL:         parseHref(lookup(m, urlKeys)),
		ParentTitle: parseParent(lookup(m, parentKeys)),
		Order:       asFloat(lookup(m, orderKeys)),
		Expandable:  isTruthyFlag(lookup(m, expandableKeys)),
	}, true
}

// DecodeSiteEntry converts one {Text, Value} object. Non-string fields
// decode as empty strings; Distribute filters those out.
func DecodeSiteEntry(m map[string]any) SiteEntry {
	return SiteEntry{
		DisplayText: asString(lookup(m, siteTextKeys)),
		URL:         asString(lookup(m, siteValueKeys)),
	}
}

// DecodeNavRecords decodes every object in items, skipping anything that is
// not an object or not a navigation record.
func DecodeNavRecords(items []any) []NavRecord {
	records := make([]NavRecord, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if rec, ok := DecodeNavRecord(m); ok {
			records = append(records, rec)
		}
	}
	return records
}

// DecodeSiteEntries decodes every object in items, skipping non-objects.
func DecodeSiteEntries(items []any) []SiteEntry {
	sites := make([]SiteEntry, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			sites = append(sites, DecodeSiteEntry(m))
		}
	}
	return sites
}

func lookup(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func parseLevel(v any) LevelTag {
	switch x := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "top", "1":
			return LevelTop
		case "column", "2":
			return LevelColumn
		case "leaf", "3":
			return LevelLeaf
		}
	case int, int64, float64:
		switch asFloat(x) {
		case 1:
			return LevelTop
		case 2:
			return LevelColumn
		case 3:
			return LevelLeaf
		}
	}
	return LevelUnknown
}

// parseHref accepts a plain string, a hyperlink object {Url: "..."} or
// nothing at all.
func parseHref(v any) Href {
	switch x := v.(type) {
	case string:
		return StringHref(x)
	case map[string]any:
		if u, ok := lookup(x, []string{"Url", "url"}).(string); ok {
			return ObjectHref(u)
		}
	}
	return Href{Kind: HrefNone}
}

// parseParent accepts an expanded lookup object {Title: "..."} or a string.
func parseParent(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		return asString(lookup(x, titleKeys))
	}
	return ""
}

// isTruthyFlag is true only for boolean true or the literal "Yes".
func isTruthyFlag(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "Yes"
	}
	return false
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}
