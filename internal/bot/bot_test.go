package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

type fakeAPI struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Params
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	params["endpoint"] = endpoint
	f.requests = append(f.requests, params)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

type recordingEnricher struct {
	urls []string
}

func (r *recordingEnricher) Schedule(_, url string) { r.urls = append(r.urls, url) }

func command(name string) tgbotapi.Update {
	text := "/" + name
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: 42},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		},
	}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		Message:  &tgbotapi.Message{Text: s, Chat: &tgbotapi.Chat{ID: 42}},
	}
}

func newTestBot(api API, links *store.LinkStore, enricher LinkEnricher) *Bot {
	return NewWithAPI(api, Options{WebAppURL: "https://app.example/", NotifyChatID: 7}, links, enricher, logger.New("error", false))
}

func TestStartSendsWebAppButton(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(api, store.NewLinkStore(), nil)

	b.handle(command("start"))

	if len(api.requests) != 1 {
		t.Fatalf("expected one raw request, got %d", len(api.requests))
	}
	req := api.requests[0]
	if req["endpoint"] != "sendMessage" || req["chat_id"] != "42" {
		t.Errorf("request = %v", req)
	}
	if !strings.Contains(req["reply_markup"], `"web_app":{"url":"https://app.example/"}`) {
		t.Errorf("reply_markup = %s", req["reply_markup"])
	}
}

func TestTextWithLinkIsSaved(t *testing.T) {
	api := newFakeAPI()
	links := store.NewLinkStore()
	enricher := &recordingEnricher{}
	b := newTestBot(api, links, enricher)

	b.handle(text("look at https://go.dev/blog, it's great"))

	got := links.Snapshot().Links
	if len(got) != 1 {
		t.Fatalf("expected one saved link, got %d", len(got))
	}
	if got[0].URL != "https://go.dev/blog" || got[0].Title != "go.dev" || got[0].FolderID != "default" {
		t.Errorf("saved link = %+v", got[0])
	}
	if len(enricher.urls) != 1 {
		t.Errorf("preview not scheduled")
	}
	if !strings.HasPrefix(api.lastText(), "Saved to General") {
		t.Errorf("reply = %q", api.lastText())
	}

	b.handle(text("https://go.dev/blog"))
	if n := len(links.Snapshot().Links); n != 1 {
		t.Errorf("duplicate link saved, %d links", n)
	}
	if !strings.HasPrefix(api.lastText(), "Already saved") {
		t.Errorf("reply = %q", api.lastText())
	}
}

func TestTextWithoutLinkIsIgnored(t *testing.T) {
	api := newFakeAPI()
	links := store.NewLinkStore()
	b := newTestBot(api, links, nil)

	b.handle(text("hello there"))

	if len(links.Snapshot().Links) != 0 || len(api.sent) != 0 {
		t.Error("plain text must not save a link or reply")
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		entities []tgbotapi.MessageEntity
		want     string
	}{
		{name: "https word", text: "see https://example.com/a.", want: "https://example.com/a"},
		{name: "www word", text: "www.example.com please", want: "www.example.com"},
		{name: "bare domain ignored without entity", text: "example.com", want: ""},
		{name: "url entity on bare domain", text: "read example.com/post today",
			entities: []tgbotapi.MessageEntity{{Type: "url", Offset: 5, Length: 16}}, want: "example.com/post"},
		{name: "url entity after emoji", text: "🔥 go.dev",
			entities: []tgbotapi.MessageEntity{{Type: "url", Offset: 3, Length: 6}}, want: "go.dev"},
		{name: "url entity out of range", text: "short",
			entities: []tgbotapi.MessageEntity{{Type: "url", Offset: 2, Length: 10}}, want: ""},
		{name: "text link entity", text: "click here", entities: []tgbotapi.MessageEntity{{Type: "text_link", URL: "https://hidden.example"}}, want: "https://hidden.example"},
		{name: "nothing", text: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURL(tt.text, tt.entities); got != tt.want {
				t.Errorf("ExtractURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotify(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(api, store.NewLinkStore(), nil)

	if err := b.Notify(context.Background(), "Netflix renews tomorrow"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if api.sent[0].ChatID != 7 || api.sent[0].Text != "Netflix renews tomorrow" {
		t.Errorf("sent = %+v", api.sent[0])
	}

	silent := NewWithAPI(api, Options{}, store.NewLinkStore(), nil, logger.New("error", false))
	if err := silent.Notify(context.Background(), "x"); !errors.Is(err, ErrNoNotifyChat) {
		t.Errorf("Notify() without chat error = %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	links := store.NewLinkStore()
	b := newTestBot(api, links, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	api.updates <- text("https://example.com")
	deadline := time.Now().Add(time.Second)
	for len(links.Snapshot().Links) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if !api.stopped {
		t.Error("StopReceivingUpdates was not called")
	}
	if len(links.Snapshot().Links) != 1 {
		t.Error("update was not handled")
	}
}
