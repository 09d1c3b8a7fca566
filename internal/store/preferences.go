package store

import (
	"sync"

	"github.com/MrSnakeDoc/yodda/internal/domain"
)

// LanguageState is the persisted shape of the language store.
type LanguageState struct {
	Language domain.Language `json:"language"`
}

// ThemeState is the persisted shape of the theme store.
type ThemeState struct {
	Theme domain.Theme `json:"theme"`
}

// ProfileState is the persisted shape of the profile store.
// Profile stays nil until something sets it.
type ProfileState struct {
	Profile *domain.UserProfile `json:"profile"`
}

// valueStore is a single mutable value with subscribers.
type valueStore[T any] struct {
	mu        sync.RWMutex
	value     T
	listeners listeners[T]
}

func (v *valueStore[T]) Snapshot() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

func (v *valueStore[T]) Restore(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value
}

func (v *valueStore[T]) Subscribe(fn func(T)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners.add(fn)
}

// update applies fn to the value under the lock and notifies subscribers.
func (v *valueStore[T]) update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = fn(v.value)
	v.listeners.notify(v.value)
	return v.value
}

// LanguageStore holds the UI language.
type LanguageStore struct {
	valueStore[LanguageState]
}

func NewLanguageStore() *LanguageStore {
	s := &LanguageStore{}
	s.value = LanguageState{Language: domain.DefaultLanguage}
	return s
}

func (s *LanguageStore) Language() domain.Language {
	return s.Snapshot().Language
}

func (s *LanguageStore) SetLanguage(l domain.Language) {
	s.update(func(LanguageState) LanguageState { return LanguageState{Language: l} })
}

// Restore falls back to the default language when the stored one is unknown.
func (s *LanguageStore) Restore(state LanguageState) {
	if !state.Language.Valid() {
		state.Language = domain.DefaultLanguage
	}
	s.valueStore.Restore(state)
}

// ThemeStore holds the UI theme.
type ThemeStore struct {
	valueStore[ThemeState]
}

func NewThemeStore() *ThemeStore {
	s := &ThemeStore{}
	s.value = ThemeState{Theme: domain.DefaultTheme}
	return s
}

func (s *ThemeStore) Theme() domain.Theme {
	return s.Snapshot().Theme
}

func (s *ThemeStore) SetTheme(t domain.Theme) {
	s.update(func(ThemeState) ThemeState { return ThemeState{Theme: t} })
}

// Restore falls back to the default theme when the stored one is unknown.
func (s *ThemeStore) Restore(state ThemeState) {
	if !state.Theme.Valid() {
		state.Theme = domain.DefaultTheme
	}
	s.valueStore.Restore(state)
}

// ProfileStore holds the host-supplied user profile.
type ProfileStore struct {
	valueStore[ProfileState]
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

// Profile returns a copy of the profile, or nil when none was set.
func (s *ProfileStore) Profile() *domain.UserProfile {
	p := s.Snapshot().Profile
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// SetProfile replaces the profile.
func (s *ProfileStore) SetProfile(p domain.UserProfile) {
	s.update(func(ProfileState) ProfileState { return ProfileState{Profile: &p} })
}

// UpdateProfile merges patch into the profile. Without a profile the patch
// becomes the profile.
func (s *ProfileStore) UpdateProfile(patch domain.ProfilePatch) domain.UserProfile {
	state := s.update(func(cur ProfileState) ProfileState {
		var base domain.UserProfile
		if cur.Profile != nil {
			base = *cur.Profile
		}
		merged := patch.Apply(base)
		return ProfileState{Profile: &merged}
	})
	return *state.Profile
}

// ApplyHostIdentity overrides stored fields with the identity the host
// passed at load time. Nothing is written when the patch is empty.
func (s *ProfileStore) ApplyHostIdentity(patch domain.ProfilePatch) *domain.UserProfile {
	if patch.IsEmpty() {
		return s.Profile()
	}
	p := s.UpdateProfile(patch)
	return &p
}
