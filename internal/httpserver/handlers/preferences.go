package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
)

type languageRequest struct {
	Language string `json:"language" validate:"required,oneof=en ru uz"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

type profileRequest struct {
	ID          *int64  `json:"id"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	Username    *string `json:"username" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
}

type profileResponse struct {
	Profile *domain.UserProfile `json:"profile"`
}

type bootstrapResponse struct {
	Language domain.Language     `json:"language"`
	Theme    domain.Theme        `json:"theme"`
	Profile  *domain.UserProfile `json:"profile"`
}

func GetLanguage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, languageRequest{Language: string(d.Language.Language())})
	}
}

func SetLanguage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req languageRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		d.Language.SetLanguage(domain.Language(req.Language))
		writeJSON(w, http.StatusOK, req)
	}
}

func GetTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, themeRequest{Theme: string(d.Theme.Theme())})
	}
}

func SetTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req themeRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		d.Theme.SetTheme(domain.Theme(req.Theme))
		writeJSON(w, http.StatusOK, req)
	}
}

func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, profileResponse{Profile: d.Profile.Profile()})
	}
}

// UpdateProfile merges the given fields; the first update creates the profile.
func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		p := d.Profile.UpdateProfile(domain.ProfilePatch{
			ID:          req.ID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Username:    req.Username,
			PhoneNumber: req.PhoneNumber,
			PhotoURL:    req.PhotoURL,
		})
		writeJSON(w, http.StatusOK, profileResponse{Profile: &p})
	}
}

// Bootstrap is called once when the mini-app loads. Identity fields the bot
// put in the page URL are forwarded as query parameters (the page fragment,
// if any, in "hash") and override the stored profile.
func Bootstrap(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		profile := d.Profile.ApplyHostIdentity(domain.HostIdentityPatch(q, q.Get("hash")))

		writeJSON(w, http.StatusOK, bootstrapResponse{
			Language: d.Language.Language(),
			Theme:    d.Theme.Theme(),
			Profile:  profile,
		})
	}
}
