package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
)

type failingRepo struct{}

func (failingRepo) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (failingRepo) Save(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func TestLinkStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	repo := NewMemoryRepository()

	src := NewLinkStore()
	b := Bind[LinkState](ctx, repo, KeyLinks, src, log)
	work := src.AddFolder("Work")
	src.AddLink(domain.LinkInput{FolderID: work, URL: "a.example", Title: "A", Note: "n"})
	src.AddLink(domain.LinkInput{FolderID: domain.DefaultFolderID, URL: "b.example", Title: "B", IsFavorite: true})
	b.Flush()
	b.Close()

	dst := NewLinkStore()
	b2 := Bind[LinkState](ctx, repo, KeyLinks, dst, log)
	defer b2.Close()

	want, got := src.Snapshot(), dst.Snapshot()
	if len(got.Folders) != len(want.Folders) || len(got.Links) != len(want.Links) {
		t.Fatalf("reloaded state differs: got %+v, want %+v", got, want)
	}
	for i := range want.Folders {
		if !want.Folders[i].CreatedAt.Equal(got.Folders[i].CreatedAt) {
			t.Errorf("folder %d created_at differs", i)
		}
		want.Folders[i].CreatedAt = got.Folders[i].CreatedAt
	}
	for i := range want.Links {
		if !want.Links[i].CreatedAt.Equal(got.Links[i].CreatedAt) {
			t.Errorf("link %d created_at differs", i)
		}
		want.Links[i].CreatedAt = got.Links[i].CreatedAt
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("reloaded state differs:\n got %+v\nwant %+v", got, want)
	}
}

func TestSubscriptionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	repo := NewMemoryRepository()

	src := NewSubscriptionStore()
	b := Bind[SubscriptionState](ctx, repo, KeySubs, src, log)
	src.AddSubscription(domain.SubscriptionInput{
		Name:              "Domain",
		Category:          domain.CategoryProductivity,
		Amount:            decimal.RequireFromString("120.00"),
		Currency:          "USD",
		BillingCycleType:  domain.CycleYearly,
		BillingCycleValue: 1,
		NextBillingDate:   "2026-11-01",
		ReminderDays:      3,
	})
	b.Close()

	dst := NewSubscriptionStore()
	Bind[SubscriptionState](ctx, repo, KeySubs, dst, log).Close()

	want, got := src.List(), dst.List()
	if len(got) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(got))
	}
	if got[0].ID != want[0].ID || !got[0].Amount.Equal(want[0].Amount) ||
		got[0].NextBillingDate != want[0].NextBillingDate || got[0].ReminderDays != 3 {
		t.Errorf("reloaded %+v, want %+v", got[0], want[0])
	}
}

func TestBindMalformedDocumentKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_ = repo.Save(ctx, KeyLanguage, []byte("{not json"))

	s := NewLanguageStore()
	Bind[LanguageState](ctx, repo, KeyLanguage, s, logger.New("error", false)).Close()

	if s.Language() != domain.DefaultLanguage {
		t.Errorf("language = %s, want default", s.Language())
	}
}

func TestBindFailingRepositoryDoesNotBreakMutations(t *testing.T) {
	s := NewLinkStore()
	b := Bind[LinkState](context.Background(), failingRepo{}, KeyLinks, s, logger.New("error", false))
	defer b.Close()

	id := s.AddFolder("Work")
	b.Flush()

	if _, ok := s.Folder(id); !ok {
		t.Error("mutation lost when persistence failed")
	}
}

func TestBindWritesDocumentEnvelope(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	s := NewThemeStore()
	b := Bind[ThemeState](ctx, repo, KeyTheme, s, logger.New("error", false))

	s.SetTheme(domain.ThemeDark)
	b.Close()

	data, err := repo.Load(ctx, KeyTheme)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != `{"state":{"theme":"dark"},"version":0}` {
		t.Errorf("stored document = %s", data)
	}
}

func TestBindSavesOnlyMutatedStores(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	repo := NewMemoryRepository()

	links := NewLinkStore()
	theme := NewThemeStore()
	bl := Bind[LinkState](ctx, repo, KeyLinks, links, log)
	bt := Bind[ThemeState](ctx, repo, KeyTheme, theme, log)

	if keys := repo.Keys(); len(keys) != 0 {
		t.Fatalf("hydration wrote %v, want nothing", keys)
	}

	theme.SetTheme(domain.ThemeDark)
	bl.Close()
	bt.Close()

	if keys := repo.Keys(); !reflect.DeepEqual(keys, []string{KeyTheme}) {
		t.Errorf("Keys() = %v, want [%s]", keys, KeyTheme)
	}
}
