package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/preview"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

var today = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type noPreviews struct{}

func (noPreviews) Fetch(context.Context, string) (*preview.Preview, bool) { return nil, false }

// stores is one set of state containers bound to a repository.
type stores struct {
	links    *store.LinkStore
	subs     *store.SubscriptionStore
	language *store.LanguageStore
	theme    *store.ThemeStore
	profile  *store.ProfileStore
	flush    []func()
}

func bindStores(t *testing.T, repo store.Repository) *stores {
	t.Helper()
	log := logger.New("error", false)
	ctx := context.Background()

	s := &stores{
		links:    store.NewLinkStore(),
		subs:     store.NewSubscriptionStore(),
		language: store.NewLanguageStore(),
		theme:    store.NewThemeStore(),
		profile:  store.NewProfileStore(),
	}
	bl := store.Bind[store.LinkState](ctx, repo, store.KeyLinks, s.links, log)
	bs := store.Bind[store.SubscriptionState](ctx, repo, store.KeySubs, s.subs, log)
	bg := store.Bind[store.LanguageState](ctx, repo, store.KeyLanguage, s.language, log)
	bt := store.Bind[store.ThemeState](ctx, repo, store.KeyTheme, s.theme, log)
	bp := store.Bind[store.ProfileState](ctx, repo, store.KeyProfile, s.profile, log)
	s.flush = []func(){bl.Flush, bs.Flush, bg.Flush, bt.Flush, bp.Flush}
	t.Cleanup(func() {
		bl.Close()
		bs.Close()
		bg.Close()
		bt.Close()
		bp.Close()
	})
	return s
}

func (s *stores) Flush() {
	for _, f := range s.flush {
		f()
	}
}

func newServer(t *testing.T, s *stores) *httptest.Server {
	t.Helper()
	d := deps.Deps{
		Logger:        logger.New("error", false),
		StartTime:     today,
		Version:       "test",
		TimeNow:       func() time.Time { return today },
		PreviewBurst:  5,
		PreviewPerMin: 60,
		StorageMode:   "memory",
		Links:         s.links,
		Subscriptions: s.subs,
		Language:      s.language,
		Theme:         s.theme,
		Profile:       s.profile,
		Previews:      noPreviews{},
		Validate:      handlers.NewValidator(),
	}
	srv := httptest.NewServer(httpserver.NewRouter(5*time.Second, d))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, want int) []byte {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s status = %d, want %d (body %s)", method, path, resp.StatusCode, want, data)
	}
	return data
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return string(data)
}

// TestStateSurvivesRestart drives the API, then binds fresh stores to the
// same repository and checks every collection comes back unchanged.
func TestStateSurvivesRestart(t *testing.T) {
	repo := store.NewMemoryRepository()
	first := bindStores(t, repo)
	srv := newServer(t, first)

	var work domain.Folder
	if err := json.Unmarshal(call(t, srv, http.MethodPost, "/api/folders", `{"name":"Work"}`, http.StatusCreated), &work); err != nil {
		t.Fatalf("decode folder: %v", err)
	}
	call(t, srv, http.MethodPost, "/api/links", `{"url":"go.dev","title":"Go","folder_id":"`+work.ID+`"}`, http.StatusCreated)
	call(t, srv, http.MethodPost, "/api/links", `{"url":"https://news.ycombinator.com","title":"HN","is_favorite":true}`, http.StatusCreated)

	for _, body := range []string{
		`{"name":"Netflix","category":"Entertainment","amount":"15","currency":"USD","billing_cycle_type":"monthly","next_billing_date":"2024-03-12","reminder_days":3}`,
		`{"name":"Domain","category":"Productivity","amount":"120","currency":"USD","billing_cycle_type":"yearly","next_billing_date":"2024-12-01"}`,
		`{"name":"Gym","category":"Health","amount":"10","currency":"USD","billing_cycle_type":"weekly","next_billing_date":"2024-03-15"}`,
	} {
		call(t, srv, http.MethodPost, "/api/subscriptions", body, http.StatusCreated)
	}

	call(t, srv, http.MethodPut, "/api/preferences/language", `{"language":"uz"}`, http.StatusOK)
	call(t, srv, http.MethodPut, "/api/preferences/theme", `{"theme":"dark"}`, http.StatusOK)
	call(t, srv, http.MethodPatch, "/api/profile", `{"firstName":"Ada","username":"ada"}`, http.StatusOK)

	var spending struct {
		Monthly  string `json:"monthly"`
		Yearly   string `json:"yearly"`
		Upcoming []struct {
			Name string `json:"name"`
		} `json:"upcoming"`
	}
	if err := json.Unmarshal(call(t, srv, http.MethodGet, "/api/spending", "", http.StatusOK), &spending); err != nil {
		t.Fatalf("decode spending: %v", err)
	}
	if spending.Monthly != "65.00" || spending.Yearly != "780.00" {
		t.Errorf("spending = %s / %s, want 65.00 / 780.00", spending.Monthly, spending.Yearly)
	}
	if len(spending.Upcoming) != 2 || spending.Upcoming[0].Name != "Netflix" || spending.Upcoming[1].Name != "Gym" {
		t.Errorf("upcoming = %+v, want Netflix then Gym", spending.Upcoming)
	}

	first.Flush()
	for _, key := range []string{store.KeyLinks, store.KeySubs, store.KeyLanguage, store.KeyTheme, store.KeyProfile} {
		data, err := repo.Load(context.Background(), key)
		if err != nil {
			t.Fatalf("document %s not saved: %v", key, err)
		}
		if !strings.Contains(string(data), `"version":0`) {
			t.Errorf("document %s = %s, want a versioned envelope", key, data)
		}
	}

	second := bindStores(t, repo)
	checks := []struct {
		name      string
		got, want any
	}{
		{"links", second.links.Snapshot(), first.links.Snapshot()},
		{"subscriptions", second.subs.Snapshot(), first.subs.Snapshot()},
		{"language", second.language.Language(), domain.Language("uz")},
		{"theme", second.theme.Theme(), domain.Theme("dark")},
		{"profile", second.profile.Profile(), first.profile.Profile()},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if got, want := mustJSON(t, c.got), mustJSON(t, c.want); got != want {
				t.Errorf("restored %s = %s, want %s", c.name, got, want)
			}
		})
	}
}

// TestFolderDeleteCascadesOverHTTP checks that links of a deleted folder are
// gone from both the API and the persisted document.
func TestFolderDeleteCascadesOverHTTP(t *testing.T) {
	repo := store.NewMemoryRepository()
	s := bindStores(t, repo)
	srv := newServer(t, s)

	var folder domain.Folder
	if err := json.Unmarshal(call(t, srv, http.MethodPost, "/api/folders", `{"name":"Reading"}`, http.StatusCreated), &folder); err != nil {
		t.Fatalf("decode folder: %v", err)
	}
	call(t, srv, http.MethodPost, "/api/links", `{"url":"example.com/a","title":"A","folder_id":"`+folder.ID+`"}`, http.StatusCreated)
	call(t, srv, http.MethodPost, "/api/links", `{"url":"example.com/b","title":"B"}`, http.StatusCreated)

	call(t, srv, http.MethodDelete, "/api/folders/"+folder.ID, "", http.StatusNoContent)

	var links []domain.Link
	if err := json.Unmarshal(call(t, srv, http.MethodGet, "/api/links", "", http.StatusOK), &links); err != nil {
		t.Fatalf("decode links: %v", err)
	}
	if len(links) != 1 || links[0].Title != "B" {
		t.Fatalf("links after cascade = %+v, want only B", links)
	}

	s.Flush()
	restored := bindStores(t, repo)
	if n := len(restored.links.Snapshot().Links); n != 1 {
		t.Errorf("persisted links = %d, want 1", n)
	}
	if _, ok := restored.links.Folder(folder.ID); ok {
		t.Error("deleted folder was persisted")
	}
}
