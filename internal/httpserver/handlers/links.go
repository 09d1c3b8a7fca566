package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

type createLinkRequest struct {
	FolderID    string `json:"folder_id"`
	URL         string `json:"url" validate:"required,weburl"`
	Title       string `json:"title" validate:"required,max=300"`
	Note        string `json:"note" validate:"max=2000"`
	IsFavorite  bool   `json:"is_favorite"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Description string `json:"description" validate:"max=2000"`
	SiteName    string `json:"site_name" validate:"max=300"`
}

type updateLinkRequest struct {
	FolderID    *string `json:"folder_id" validate:"omitempty,min=1"`
	URL         *string `json:"url" validate:"omitempty,weburl"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=300"`
	Note        *string `json:"note" validate:"omitempty,max=2000"`
	IsFavorite  *bool   `json:"is_favorite"`
	Thumbnail   *string `json:"thumbnail" validate:"omitempty,url"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	SiteName    *string `json:"site_name" validate:"omitempty,max=300"`
}

func (u updateLinkRequest) patch() domain.LinkPatch {
	return domain.LinkPatch{
		FolderID:    u.FolderID,
		URL:         u.URL,
		Title:       u.Title,
		Note:        u.Note,
		IsFavorite:  u.IsFavorite,
		Thumbnail:   u.Thumbnail,
		Description: u.Description,
		SiteName:    u.SiteName,
	}
}

// ListLinks filters links by folder_id and favorites, ranking them by q.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		favorites, _ := strconv.ParseBool(q.Get("favorites"))

		links := d.Links.SearchLinks(store.LinkQuery{
			FolderID:      q.Get("folder_id"),
			FavoritesOnly: favorites,
			Text:          strings.TrimSpace(q.Get("q")),
		})
		writeJSON(w, http.StatusOK, links)
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, ok := d.Links.Link(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// CreateLink stores a link (default folder when folder_id is empty) and
// queues a preview when none was supplied.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		if req.FolderID == "" {
			req.FolderID = domain.DefaultFolderID
		}
		if _, ok := d.Links.Folder(req.FolderID); !ok {
			writeError(w, http.StatusBadRequest, "unknown folder_id")
			return
		}

		l := d.Links.AddLink(domain.LinkInput{
			FolderID:    req.FolderID,
			URL:         req.URL,
			Title:       strings.TrimSpace(req.Title),
			Note:        req.Note,
			IsFavorite:  req.IsFavorite,
			Thumbnail:   req.Thumbnail,
			Description: req.Description,
			SiteName:    req.SiteName,
		})

		if d.Enricher != nil && l.Thumbnail == "" && l.Description == "" {
			d.Enricher.Schedule(l.ID, l.URL)
		}

		d.Logger.Info("link created",
			logger.String("link_id", l.ID),
			logger.String("folder_id", l.FolderID),
			logger.String("url", l.URL))
		writeJSON(w, http.StatusCreated, l)
	}
}

// UpdateLink merges the given fields. A changed URL queues a fresh preview.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		before, ok := d.Links.Link(id)
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}

		var req updateLinkRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		if req.FolderID != nil {
			if _, ok := d.Links.Folder(*req.FolderID); !ok {
				writeError(w, http.StatusBadRequest, "unknown folder_id")
				return
			}
		}

		l, ok := d.Links.UpdateLink(id, req.patch())
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}

		if d.Enricher != nil && l.URL != before.URL {
			d.Enricher.Schedule(l.ID, l.URL)
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Links.Link(id); !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}

		if d.Enricher != nil {
			d.Enricher.Forget(id)
		}
		d.Links.DeleteLink(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
