package domain

import (
	"net/url"
	"strings"
)

// Language is the UI language of the mini-app.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
	LanguageUzbek   Language = "uz"

	DefaultLanguage = LanguageEnglish
)

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageRussian, LanguageUzbek:
		return true
	}
	return false
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// UserProfile holds identity fields passed through by the host (Telegram).
// Every field is optional.
type UserProfile struct {
	ID          *int64 `json:"id,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Username    string `json:"username,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	ID          *int64
	FirstName   *string
	LastName    *string
	Username    *string
	PhoneNumber *string
	PhotoURL    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.ID == nil && p.FirstName == nil && p.LastName == nil &&
		p.Username == nil && p.PhoneNumber == nil && p.PhotoURL == nil
}

// Apply merges the non-nil fields of p into u and returns the result.
func (p ProfilePatch) Apply(u UserProfile) UserProfile {
	if p.ID != nil {
		id := *p.ID
		u.ID = &id
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	return u
}

// HostIdentityPatch extracts the identity overrides the bot passes to the
// mini-app. query is the page query string; hash is the page fragment, whose
// part after the first '?' is parsed the same way. Query values win over hash
// values. Empty values are ignored.
func HostIdentityPatch(query url.Values, hash string) ProfilePatch {
	var hashValues url.Values
	if i := strings.IndexByte(hash, '?'); i >= 0 {
		hashValues, _ = url.ParseQuery(hash[i+1:])
	}

	get := func(key string) *string {
		v := strings.TrimSpace(query.Get(key))
		if v == "" && hashValues != nil {
			v = strings.TrimSpace(hashValues.Get(key))
		}
		if v == "" {
			return nil
		}
		return &v
	}

	return ProfilePatch{
		PhoneNumber: get("phone"),
		PhotoURL:    get("photo"),
		FirstName:   get("first_name"),
		LastName:    get("last_name"),
		Username:    get("username"),
	}
}
