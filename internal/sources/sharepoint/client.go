package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/utils"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// navSelect lists the list columns the navigation query asks for.
const navSelect = "Title,Level,Url,Parent/Title,Order,HasMegaMenu"

// Options configures a Client.
type Options struct {
	SiteURL        string        // site base URL, without trailing slash
	AccessToken    string        // optional bearer token
	NavList        string        // title of the navigation list
	PageSize       int           // $top bound for the navigation query
	NavItemsPath   string        // JSONPath to record objects (ex: "$.value[*]")
	SitesEndpoint  string        // discovery endpoint path, relative to SiteURL
	SitesItemsPath string        // JSONPath to {Text, Value} objects (ex: "$.d[*]")
	Timeout        time.Duration // http.Client timeout, 0 keeps the default of 30s
	HTTPClient     *http.Client  // optional, overrides Timeout
}

// Client fetches both menu sources from a SharePoint site.
type Client struct {
	siteURL       string
	token         string
	navList       string
	pageSize      int
	navItems      jp.Expr
	sitesEndpoint string
	sitesItems    jp.Expr
	httpClient    *http.Client
}

// NewClient validates opts and compiles its JSONPath selectors.
func NewClient(opts Options) (*Client, error) {
	if opts.SiteURL == "" {
		return nil, errors.New("site URL is required")
	}
	if opts.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be > 0, got %d", opts.PageSize)
	}

	navItems, err := jp.ParseString(opts.NavItemsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid navigation items path %q: %w", opts.NavItemsPath, err)
	}
	sitesItems, err := jp.ParseString(opts.SitesItemsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid site items path %q: %w", opts.SitesItemsPath, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		siteURL:       strings.TrimRight(opts.SiteURL, "/"),
		token:         opts.AccessToken,
		navList:       opts.NavList,
		pageSize:      opts.PageSize,
		navItems:      navItems,
		sitesEndpoint: opts.SitesEndpoint,
		sitesItems:    sitesItems,
		httpClient:    httpClient,
	}, nil
}

// FetchNavigationRecords queries the navigation list ordered by Order,
// with the Parent lookup expanded to its title.
func (c *Client) FetchNavigationRecords(ctx context.Context) ([]domain.NavRecord, error) {
	doc, err := c.getJSON(ctx, c.navigationURL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch navigation records: %w", err)
	}
	return domain.DecodeNavRecords(c.navItems.Get(doc)), nil
}

// FetchSiteCollections calls the discovery endpoint.
func (c *Client) FetchSiteCollections(ctx context.Context) ([]domain.SiteEntry, error) {
	doc, err := c.getJSON(ctx, c.siteURL+c.sitesEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch site collections: %w", err)
	}
	return domain.DecodeSiteEntries(c.sitesItems.Get(doc)), nil
}

func (c *Client) navigationURL() string {
	// OData string literals escape quotes by doubling them.
	list := strings.ReplaceAll(c.navList, "'", "''")

	q := url.Values{}
	q.Set("$select", navSelect)
	q.Set("$expand", "Parent")
	q.Set("$orderby", "Order asc")
	q.Set("$top", strconv.Itoa(c.pageSize))

	return fmt.Sprintf("%s/_api/web/lists/getbytitle('%s')/items?%s",
		c.siteURL, url.PathEscape(list), q.Encode())
}

func (c *Client) getJSON(ctx context.Context, target string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return doc, nil
}
