package navfile

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
)

var (
	templateVar   = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)
	templateToken = regexp.MustCompile(`__megamenu_var_([0-9]+)__`)
)

// document is the wrapped form of a navigation file:
//
//	navigation:
//	  - title: Programs
//	    level: top
type document struct {
	Navigation []any `yaml:"navigation"`
}

// Loader reads navigation records from a local YAML or JSON file.
// It stands in for the SharePoint list when MEGAMENU_NAV_FILE is set.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// FetchNavigationRecords reads the file on every call so edits are picked up
// by the next refresh. Records come back sorted by Order, ties in file order.
func (l *Loader) FetchNavigationRecords(ctx context.Context) ([]domain.NavRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read navigation file: %w", err)
	}

	data, vars := tokenizeTemplateVariables(data)
	items, err := parse(data, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to parse navigation file %s: %w", l.filePath, err)
	}

	records := domain.DecodeNavRecords(items)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Order < records[j].Order
	})
	return records, nil
}

// parse accepts either a top-level sequence or a {navigation: [...]} mapping.
// JSON is valid YAML, so both formats go through the same decoder.
// Template tokens are expanded in the parsed scalars, never in the raw text.
func parse(data []byte, vars []string) ([]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	expandScalars(&node, vars)

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var items []any
		if err := root.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	case yaml.MappingNode:
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Navigation, nil
	default:
		return nil, fmt.Errorf("expected a sequence or a navigation mapping, got %s", kindName(root.Kind))
	}
}

// tokenizeTemplateVariables swaps every {{NAME}} for a plain token that is
// a valid YAML scalar in any position, and returns the variable names by
// token index.
// Example: "url: {{MEGAMENU_VAR_PORTAL}}" -> "url: __megamenu_var_0__"
func tokenizeTemplateVariables(data []byte) ([]byte, []string) {
	var vars []string
	out := templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		vars = append(vars, string(templateVar.FindSubmatch(m)[1]))
		return fmt.Appendf(nil, "__megamenu_var_%d__", len(vars)-1)
	})
	return out, vars
}

// expandScalars replaces tokens with the value of the named environment
// variable, or an empty string when it is unset. Expanded scalars are
// always strings.
func expandScalars(n *yaml.Node, vars []string) {
	if n.Kind == yaml.ScalarNode && templateToken.MatchString(n.Value) {
		n.Value = templateToken.ReplaceAllStringFunc(n.Value, func(tok string) string {
			i, err := strconv.Atoi(templateToken.FindStringSubmatch(tok)[1])
			if err != nil || i >= len(vars) {
				return ""
			}
			return os.Getenv(vars[i])
		})
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		expandScalars(c, vars)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return fmt.Sprintf("kind %d", k)
	}
}
