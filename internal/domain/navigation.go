package domain

// SentinelTitle names the top item whose branch is generated from the
// site-collection list instead of authored column/leaf records.
const SentinelTitle = "My Sites"

// PlaceholderHref is used when a record carries no usable URL.
const PlaceholderHref = "#"

// LevelTag is the hierarchy level of a flat navigation record.
type LevelTag int

const (
	LevelUnknown LevelTag = iota
	LevelTop
	LevelColumn
	LevelLeaf
)

func (l LevelTag) String() string {
	switch l {
	case LevelTop:
		return "Top"
	case LevelColumn:
		return "Column"
	case LevelLeaf:
		return "Leaf"
	default:
		return "Unknown"
	}
}

// HrefKind tells which shape the source url field had.
type HrefKind int

const (
	HrefNone   HrefKind = iota // null, missing or unusable
	HrefString                 // plain string
	HrefObject                 // hyperlink object carrying a Url field
)

// Href is the url field of a record, normalized at ingestion.
// Downstream code only ever calls Resolve.
type Href struct {
	Kind  HrefKind
	Value string
}

// StringHref builds an Href from a plain string url.
func StringHref(s string) Href { return Href{Kind: HrefString, Value: s} }

// ObjectHref builds an Href from a hyperlink object's Url field.
func ObjectHref(s string) Href { return Href{Kind: HrefObject, Value: s} }

// Resolve returns the link target: the object's Url, the string itself,
// or PlaceholderHref when the record had no url.
func (h Href) Resolve() string {
	switch h.Kind {
	case HrefString, HrefObject:
		return h.Value
	default:
		return PlaceholderHref
	}
}

// NavRecord is one row of the flat navigation list.
// Each record becomes at most one node of the assembled tree.
type NavRecord struct {
	Title string
	Level LevelTag
	URL   Href

	// ParentTitle references the parent node by its title.
	// Empty means the record has no parent reference.
	ParentTitle string

	// Order is the sort key used by the source query. The linker itself
	// never reorders records.
	Order float64

	// Expandable marks a top item that owns a mega menu branch.
	Expandable bool
}

// SiteEntry is one site collection returned by the discovery endpoint.
type SiteEntry struct {
	DisplayText string
	URL         string
}

// LinkItem is a rendered link (leaf or top).
type LinkItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// MenuColumn is a titled group of links inside a branch.
type MenuColumn struct {
	Title string     `json:"title"`
	Items []LinkItem `json:"items"`
}

// MenuBranch is the expandable content of a top item.
type MenuBranch struct {
	Columns []MenuColumn `json:"columns"`
}

// NavTopItem is a first-level entry.
// Branch is nil for a plain link; a non-nil branch with zero columns is
// an expandable item that happens to be empty.
type NavTopItem struct {
	Title  string      `json:"title"`
	Href   string      `json:"href"`
	Branch *MenuBranch `json:"megaMenu,omitempty"`
}

// NavTree is the ordered list of top items handed to the presentation layer.
type NavTree []NavTopItem

func newBranch() *MenuBranch {
	return &MenuBranch{Columns: []MenuColumn{}}
}

func newColumn(title string) MenuColumn {
	return MenuColumn{Title: title, Items: []LinkItem{}}
}
