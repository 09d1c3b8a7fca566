package homepage

import (
	"sort"
	"strings"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

// Result summarizes one import run.
type Result struct {
	FoldersCreated int `json:"folders_created"`
	LinksAdded     int `json:"links_added"`
	LinksSkipped   int `json:"links_skipped"`
}

// Bookmark is one flattened entry of a bookmarks file.
type Bookmark struct {
	Category    string
	Name        string
	URL         string
	Description string
}

// Flatten lists the bookmarks of config in file order. Entries without href
// are dropped; the abbreviation stands in for an empty name.
func Flatten(config BookmarksConfig) []Bookmark {
	var out []Bookmark
	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[bookmarkName]
					if len(entries) == 0 || strings.TrimSpace(entries[0].Href) == "" {
						continue
					}
					entry := entries[0]

					name := strings.TrimSpace(bookmarkName)
					if name == "" {
						name = entry.Abbr
					}
					out = append(out, Bookmark{
						Category:    strings.TrimSpace(categoryName),
						Name:        name,
						URL:         strings.TrimSpace(entry.Href),
						Description: entry.Description,
					})
				}
			}
		}
	}
	return out
}

// Importer copies bookmarks into the link store. Each category becomes a
// folder (reused when one with the same name exists) and each bookmark a
// link, unless a link with that URL is already stored.
type Importer struct {
	loader   *Loader
	links    *store.LinkStore
	enricher LinkEnricher
	logger   logger.Logger
}

// LinkEnricher queues background previews for imported links.
type LinkEnricher interface {
	Schedule(linkID, url string)
}

// NewImporter creates an importer. enricher may be nil.
func NewImporter(filePath string, links *store.LinkStore, enricher LinkEnricher, log logger.Logger) *Importer {
	return &Importer{
		loader:   NewLoader(filePath),
		links:    links,
		enricher: enricher,
		logger:   log,
	}
}

// Import loads the file and applies it. Running it twice adds nothing new.
func (im *Importer) Import() (Result, error) {
	config, err := im.loader.Load()
	if err != nil {
		return Result{}, err
	}

	res := im.Apply(Flatten(config))
	im.logger.Info("homepage bookmarks imported",
		logger.String("file", im.loader.Path()),
		logger.Int("folders_created", res.FoldersCreated),
		logger.Int("links_added", res.LinksAdded),
		logger.Int("links_skipped", res.LinksSkipped))
	return res, nil
}

// Apply stores the given bookmarks.
func (im *Importer) Apply(bookmarks []Bookmark) Result {
	var res Result
	folderIDs := make(map[string]string)

	for _, bm := range bookmarks {
		url, err := domain.NormalizeURL(bm.URL)
		if err != nil || im.links.HasURL(url) {
			res.LinksSkipped++
			continue
		}

		folderID, created := im.folderFor(bm.Category, folderIDs)
		if created {
			res.FoldersCreated++
		}

		title := bm.Name
		if title == "" {
			title = domain.Hostname(url)
		}
		l := im.links.AddLink(domain.LinkInput{
			FolderID:    folderID,
			URL:         url,
			Title:       title,
			Description: bm.Description,
		})
		if im.enricher != nil {
			im.enricher.Schedule(l.ID, l.URL)
		}
		res.LinksAdded++
	}
	return res
}

// folderFor resolves a category name to a folder id, creating the folder on
// first use. An empty category maps to the default folder.
func (im *Importer) folderFor(category string, cache map[string]string) (string, bool) {
	if category == "" {
		return domain.DefaultFolderID, false
	}
	key := strings.ToLower(category)
	if id, ok := cache[key]; ok {
		return id, false
	}
	if f, ok := im.links.FolderByName(category); ok {
		cache[key] = f.ID
		return f.ID, false
	}
	id := im.links.AddFolder(category)
	cache[key] = id
	return id, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
