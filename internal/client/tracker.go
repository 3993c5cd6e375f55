// Tracker API client. Talks to the external issue tracker on behalf of one
// workspace's credentials.
//
// 환경변수:
//   - TRACKER_BASE_URL: tracker API base URL (default: https://sentry.io/api/0)
//
// Pagination uses the tracker's Link response header; the opaque cursor is
// pulled out of each linked URL's query string.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/model"
)

const (
	connectTestTimeout = 10 * time.Second
	requestTimeout     = 30 * time.Second

	defaultIssueQuery = "is:unresolved"
	defaultPageLimit  = 25
)

// TrackerAPIError - non-2xx answer from the tracker. Callers that need to
// distinguish "empty result" from "call failed" get this back instead of a
// swallowed nil.
type TrackerAPIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *TrackerAPIError) Error() string {
	return fmt.Sprintf("tracker returned status %d for %s", e.StatusCode, e.Endpoint)
}

type TrackerClient struct {
	baseURL    string
	token      string
	org        string
	httpClient *http.Client
}

func NewTrackerClient(cfg config.TrackerConfig, creds model.TrackerCredentials) *TrackerClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://sentry.io/api/0"
	}

	return &TrackerClient{
		baseURL: baseURL,
		token:   creds.APIToken,
		org:     creds.Organization,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *TrackerClient) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// TestConnection issues a lightweight authenticated request. Auth and network
// failures come back as false, never as an error.
func (c *TrackerClient) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectTestTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/organizations/"+c.org+"/", nil)
	if err != nil {
		log.Printf("Tracker connection test failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// TestConnectionDetailed distinguishes the common failure modes for
// user-facing diagnostics.
func (c *TrackerClient) TestConnectionDetailed(ctx context.Context) model.ConnectionStatus {
	ctx, cancel := context.WithTimeout(ctx, connectTestTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/organizations/"+c.org+"/", nil)
	if err != nil {
		if isTimeout(err) {
			return model.ConnectionStatus{
				Reason:  model.ConnReasonTimeout,
				Message: "Connection to the tracker timed out",
			}
		}
		return model.ConnectionStatus{
			Reason:  model.ConnReasonNetworkError,
			Message: fmt.Sprintf("Network error: %v", err),
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return model.ConnectionStatus{
			Success:    true,
			Reason:     model.ConnReasonOK,
			Message:    "Successfully connected to the tracker",
			StatusCode: resp.StatusCode,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ConnectionStatus{
			Reason:     model.ConnReasonInvalidToken,
			Message:    "API token was rejected by the tracker",
			StatusCode: resp.StatusCode,
		}
	case http.StatusNotFound:
		return model.ConnectionStatus{
			Reason:     model.ConnReasonOrgNotFound,
			Message:    fmt.Sprintf("Organization %q not found", c.org),
			StatusCode: resp.StatusCode,
		}
	default:
		return model.ConnectionStatus{
			Reason:     model.ConnReasonAPIError,
			Message:    fmt.Sprintf("Tracker returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
}

// ListProjects fetches the raw project list. HTTP errors propagate as
// *TrackerAPIError so callers can tell "no projects" from "call failed".
func (c *TrackerClient) ListProjects(ctx context.Context) ([]model.Project, error) {
	path := "/organizations/" + c.org + "/projects/"
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TrackerAPIError{StatusCode: resp.StatusCode, Endpoint: path, Body: string(body)}
	}

	var projects []model.Project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects response: %w", err)
	}
	return projects, nil
}

type ListIssuesOptions struct {
	ProjectID string
	Query     string
	Limit     int
	Cursor    string
}

// ListIssues returns one cursor-paginated page of issues. Malformed
// individual entries are skipped, not fatal to the page.
func (c *TrackerClient) ListIssues(ctx context.Context, opts ListIssuesOptions) (*model.IssuePage, error) {
	path := "/organizations/" + c.org + "/issues/"
	if opts.ProjectID != "" {
		path = "/projects/" + c.org + "/" + opts.ProjectID + "/issues/"
	}

	query := opts.Query
	if query == "" {
		query = defaultIssueQuery
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("shortIdLookup", "1")
	if opts.Cursor != "" {
		params.Set("cursor", opts.Cursor)
	}

	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TrackerAPIError{StatusCode: resp.StatusCode, Endpoint: path, Body: string(body)}
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse issues response: %w", err)
	}

	issues := make([]model.Issue, 0, len(raw))
	for _, entry := range raw {
		issue, err := parseIssue(entry)
		if err != nil {
			log.Printf("Skipping malformed issue entry: %v", err)
			continue
		}
		issues = append(issues, issue)
	}

	links := parseLinkHeader(resp.Header.Get("Link"))
	page := &model.IssuePage{Issues: issues}
	if next, ok := links["next"]; ok {
		page.NextCursor = next.Cursor
		page.HasNext = true
	}
	if prev, ok := links["previous"]; ok {
		page.PrevCursor = prev.Cursor
	}
	return page, nil
}

// GetIssueDetails fetches one issue. The tracker's addressing scheme is
// inconsistent across API versions, so the organization-scoped endpoint is
// tried first with a fallback to the global one. A miss on both is reported
// as found=false, not as an error.
func (c *TrackerClient) GetIssueDetails(ctx context.Context, issueID string) (*model.Issue, bool, error) {
	paths := []string{
		"/organizations/" + c.org + "/issues/" + issueID + "/",
		"/issues/" + issueID + "/",
	}

	for i, path := range paths {
		resp, err := c.get(ctx, path, nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch issue %s: %w", issueID, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if i < len(paths)-1 {
				continue
			}
			return nil, false, nil
		}

		var raw map[string]any
		err = json.NewDecoder(resp.Body).Decode(&raw)
		resp.Body.Close()
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse issue %s: %w", issueID, err)
		}

		issue, err := parseIssue(raw)
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse issue %s: %w", issueID, err)
		}
		return &issue, true, nil
	}

	return nil, false, nil
}

// GetIssueEvents returns recent raw events for an issue. Callers treat "no
// events" as acceptable degraded context, so every failure collapses to an
// empty slice.
func (c *TrackerClient) GetIssueEvents(ctx context.Context, issueID string, limit int) []map[string]any {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	paths := []string{
		"/organizations/" + c.org + "/issues/" + issueID + "/events/",
		"/issues/" + issueID + "/events/",
	}

	for i, path := range paths {
		resp, err := c.get(ctx, path, params)
		if err != nil {
			log.Printf("Failed to fetch events for issue %s: %v", issueID, err)
			return nil
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if i < len(paths)-1 {
				continue
			}
			log.Printf("Tracker returned status %d for events of issue %s", resp.StatusCode, issueID)
			return nil
		}

		var events []map[string]any
		err = json.NewDecoder(resp.Body).Decode(&events)
		resp.Body.Close()
		if err != nil {
			log.Printf("Failed to parse events for issue %s: %v", issueID, err)
			return nil
		}
		return events
	}

	return nil
}

// parseIssue converts a raw issue payload into our schema, applying the
// defaulting/coercion rules centrally instead of scattering them per caller.
func parseIssue(raw map[string]any) (model.Issue, error) {
	id := asString(raw["id"])
	if id == "" {
		return model.Issue{}, fmt.Errorf("issue entry has no id")
	}

	metadata := asMap(raw["metadata"])
	title := asString(raw["title"])

	// message resolution priority: metadata.value, then metadata.title,
	// then the issue title.
	message := asString(metadata["value"])
	if message == "" {
		message = asString(metadata["title"])
	}
	if message == "" {
		message = title
	}

	level := asString(raw["level"])
	if level == "" {
		level = "error"
	}
	platform := asString(raw["platform"])
	if platform == "" {
		platform = "unknown"
	}

	project := asMap(raw["project"])

	tags := map[string]string{}
	if rawTags, ok := raw["tags"].([]any); ok {
		for _, entry := range rawTags {
			tag := asMap(entry)
			key := asString(tag["key"])
			if key == "" {
				continue
			}
			tags[key] = asString(tag["value"])
		}
	}

	return model.Issue{
		ID:          id,
		Title:       title,
		Culprit:     asString(raw["culprit"]),
		Message:     message,
		Level:       level,
		Platform:    platform,
		ProjectID:   asString(project["id"]),
		ProjectName: asString(project["name"]),
		FirstSeen:   parseIssueTime(raw["firstSeen"], "firstSeen", id),
		LastSeen:    parseIssueTime(raw["lastSeen"], "lastSeen", id),
		Count:       asInt(raw["count"]),
		UserCount:   asInt(raw["userCount"]),
		Permalink:   asString(raw["permalink"]),
		Tags:        tags,
		Metadata:    metadata,
	}, nil
}

type pageLink struct {
	URL    string
	Cursor string
}

// parseLinkHeader parses `<url>; rel="name"` pairs and extracts the cursor
// query parameter from each URL. Relations without a cursor are dropped.
func parseLinkHeader(header string) map[string]pageLink {
	links := map[string]pageLink{}
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		rawURL := strings.Trim(strings.TrimSpace(segments[0]), "<>")

		rel := ""
		for _, segment := range segments[1:] {
			segment = strings.TrimSpace(segment)
			if value, ok := strings.CutPrefix(segment, "rel="); ok {
				rel = strings.Trim(value, `"`)
				break
			}
		}
		if rel == "" {
			continue
		}

		parsed, err := url.Parse(rawURL)
		if err != nil {
			continue
		}
		cursor := parsed.Query().Get("cursor")
		if cursor == "" {
			continue
		}

		links[rel] = pageLink{URL: rawURL, Cursor: cursor}
	}

	return links
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// asInt coerces numeric payload fields that the tracker serializes
// inconsistently (sometimes numbers, sometimes strings). Anything
// unparseable becomes zero.
func asInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseIssueTime falls back to "now" on unparseable timestamps. A bad
// timestamp must never sink the whole issue.
func parseIssueTime(value any, field, issueID string) time.Time {
	raw := asString(value)
	if raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts
		}
	}
	log.Printf("Issue %s has unparseable %s=%q, falling back to now", issueID, field, raw)
	return time.Now().UTC()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
