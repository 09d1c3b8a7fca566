package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

type folderRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type reorderFoldersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,unique,dive,required"`
}

type folderView struct {
	domain.Folder
	LinkCount int `json:"link_count"`
}

type linkStateResponse struct {
	Folders []folderView  `json:"folders"`
	Links   []domain.Link `json:"links"`
}

// LinkState returns every folder (with its link count) and every link.
func LinkState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.Links.Snapshot()

		counts := make(map[string]int, len(state.Folders))
		for _, l := range state.Links {
			counts[l.FolderID]++
		}
		folders := make([]folderView, len(state.Folders))
		for i, f := range state.Folders {
			folders[i] = folderView{Folder: f, LinkCount: counts[f.ID]}
		}

		writeJSON(w, http.StatusOK, linkStateResponse{Folders: folders, Links: state.Links})
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}

		id := d.Links.AddFolder(strings.TrimSpace(req.Name))
		f, _ := d.Links.Folder(id)
		d.Logger.Info("folder created",
			logger.String("folder_id", id),
			logger.String("name", f.Name))
		writeJSON(w, http.StatusCreated, f)
	}
}

func RenameFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Links.Folder(id); !ok {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}

		var req folderRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}

		d.Links.UpdateFolder(id, strings.TrimSpace(req.Name))
		f, _ := d.Links.Folder(id)
		writeJSON(w, http.StatusOK, f)
	}
}

// DeleteFolder removes a folder and its links. The default folder is refused.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == domain.DefaultFolderID {
			writeError(w, http.StatusBadRequest, store.ErrDefaultFolder.Error())
			return
		}
		if _, ok := d.Links.Folder(id); !ok {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}

		if d.Enricher != nil {
			for _, l := range d.Links.SearchLinks(store.LinkQuery{FolderID: id}) {
				d.Enricher.Forget(l.ID)
			}
		}
		removed := d.Links.LinkCount(id)
		d.Links.DeleteFolder(id)

		d.Logger.Info("folder deleted",
			logger.String("folder_id", id),
			logger.Int("links_removed", removed))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReorderFolders sets the folder order. The ids must list every folder exactly
// once; position_index is rewritten to match.
func ReorderFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderFoldersRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}

		current := d.Links.Snapshot().Folders
		if len(req.IDs) != len(current) {
			writeError(w, http.StatusBadRequest, "ids must list every folder exactly once")
			return
		}
		byID := make(map[string]domain.Folder, len(current))
		for _, f := range current {
			byID[f.ID] = f
		}

		ordered := make([]domain.Folder, 0, len(req.IDs))
		for i, id := range req.IDs {
			f, ok := byID[id]
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown folder id: "+id)
				return
			}
			f.PositionIndex = i
			ordered = append(ordered, f)
		}

		d.Links.ReorderFolders(ordered)
		writeJSON(w, http.StatusOK, ordered)
	}
}
