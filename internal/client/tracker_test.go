package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/model"
)

func newTestClient(serverURL string) *TrackerClient {
	return NewTrackerClient(
		config.TrackerConfig{BaseURL: serverURL},
		model.TrackerCredentials{APIToken: "token", Organization: "acme"},
	)
}

func TestListIssuesPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations/acme/issues/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Link",
			`<https://tracker.example/api/0/organizations/acme/issues/?cursor=def>; rel="previous"; results="false", `+
				`<https://tracker.example/api/0/organizations/acme/issues/?cursor=abc>; rel="next"; results="true"`)
		w.Write([]byte(`[{"id": "1001", "title": "boom"}]`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListIssues(context.Background(), ListIssuesOptions{})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}

	if len(page.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(page.Issues))
	}
	if page.NextCursor != "abc" {
		t.Errorf("next cursor = %q, want abc", page.NextCursor)
	}
	if page.PrevCursor != "def" {
		t.Errorf("prev cursor = %q, want def", page.PrevCursor)
	}
	if !page.HasNext {
		t.Error("expected HasNext")
	}
}

func TestListIssuesCoercion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{
				"id": "2001",
				"title": "TypeError in checkout",
				"metadata": {"value": "cannot read property"},
				"count": "7",
				"userCount": "not-a-number",
				"firstSeen": "garbage",
				"lastSeen": "2024-05-01T10:00:00Z",
				"tags": [
					{"key": "browser", "value": "firefox"},
					{"value": "orphan"}
				]
			},
			{"title": "entry without id is skipped"}
		]`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListIssues(context.Background(), ListIssuesOptions{})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(page.Issues) != 1 {
		t.Fatalf("expected malformed entry to be skipped, got %d issues", len(page.Issues))
	}

	issue := page.Issues[0]
	if issue.Message != "cannot read property" {
		t.Errorf("message = %q, want metadata.value", issue.Message)
	}
	if issue.Count != 7 {
		t.Errorf("count = %d, want coerced 7", issue.Count)
	}
	if issue.UserCount != 0 {
		t.Errorf("userCount = %d, want 0 for unparseable", issue.UserCount)
	}
	if issue.Level != "error" {
		t.Errorf("level = %q, want default error", issue.Level)
	}
	if issue.Platform != "unknown" {
		t.Errorf("platform = %q, want default unknown", issue.Platform)
	}
	if time.Since(issue.FirstSeen) > time.Minute {
		t.Errorf("firstSeen should fall back near now, got %v", issue.FirstSeen)
	}
	if issue.LastSeen.Format(time.RFC3339) != "2024-05-01T10:00:00Z" {
		t.Errorf("lastSeen = %v", issue.LastSeen)
	}
	if len(issue.Tags) != 1 || issue.Tags["browser"] != "firefox" {
		t.Errorf("tags = %v, want only browser=firefox", issue.Tags)
	}
}

func TestMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "metadata value wins",
			raw: map[string]any{
				"id":       "1",
				"title":    "title",
				"metadata": map[string]any{"value": "value", "title": "meta title"},
			},
			want: "value",
		},
		{
			name: "metadata title second",
			raw: map[string]any{
				"id":       "1",
				"title":    "title",
				"metadata": map[string]any{"title": "meta title"},
			},
			want: "meta title",
		},
		{
			name: "issue title last",
			raw:  map[string]any{"id": "1", "title": "title"},
			want: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue, err := parseIssue(tt.raw)
			if err != nil {
				t.Fatalf("parseIssue: %v", err)
			}
			if issue.Message != tt.want {
				t.Errorf("message = %q, want %q", issue.Message, tt.want)
			}
		})
	}
}

func TestGetIssueDetailsFallback(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if r.URL.Path == "/organizations/acme/issues/42/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": "42", "title": "found on fallback"}`))
	}))
	defer server.Close()

	issue, found, err := newTestClient(server.URL).GetIssueDetails(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetIssueDetails: %v", err)
	}
	if !found {
		t.Fatal("expected issue to be found via the global endpoint")
	}
	if issue.Title != "found on fallback" {
		t.Errorf("title = %q", issue.Title)
	}
	if len(calls) != 2 || calls[1] != "/issues/42/" {
		t.Errorf("expected org endpoint then global endpoint, got %v", calls)
	}
}

func TestGetIssueDetailsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, found, err := newTestClient(server.URL).GetIssueDetails(context.Background(), "404")
	if err != nil {
		t.Fatalf("a miss on both endpoints must not be an error, got %v", err)
	}
	if found {
		t.Error("expected found=false")
	}
}

func TestTestConnectionDetailed(t *testing.T) {
	tests := []struct {
		status     int
		wantReason string
	}{
		{http.StatusOK, model.ConnReasonOK},
		{http.StatusUnauthorized, model.ConnReasonInvalidToken},
		{http.StatusForbidden, model.ConnReasonInvalidToken},
		{http.StatusNotFound, model.ConnReasonOrgNotFound},
		{http.StatusInternalServerError, model.ConnReasonAPIError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		got := newTestClient(server.URL).TestConnectionDetailed(context.Background())
		if got.Reason != tt.wantReason {
			t.Errorf("status %d: reason = %q, want %q", tt.status, got.Reason, tt.wantReason)
		}
		if got.Success != (tt.status == http.StatusOK) {
			t.Errorf("status %d: success = %v", tt.status, got.Success)
		}
		server.Close()
	}
}

func TestParseLinkHeader(t *testing.T) {
	links := parseLinkHeader(
		`<https://x/api/0/issues/?cursor=a1>; rel="next", ` +
			`<https://x/api/0/issues/>; rel="previous", ` +
			`malformed-part`)

	if links["next"].Cursor != "a1" {
		t.Errorf("next cursor = %q", links["next"].Cursor)
	}
	if _, ok := links["previous"]; ok {
		t.Error("relation without cursor should be dropped")
	}
	if len(links) != 1 {
		t.Errorf("expected 1 link, got %d", len(links))
	}
}

func TestListIssuesProjectScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/acme/web/issues/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "is:unresolved" {
			t.Errorf("query = %q, want default", got)
		}
		if got := r.URL.Query().Get("cursor"); got != "c9" {
			t.Errorf("cursor = %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListIssues(context.Background(), ListIssuesOptions{
		ProjectID: "web",
		Cursor:    "c9",
	})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
}
