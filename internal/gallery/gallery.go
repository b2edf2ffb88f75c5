package gallery

import (
	"path"
	"strings"
)

// Image is one gallery entry as the UI consumes it.
type Image struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Img        string   `json:"img"`
	Thumbnail  string   `json:"thumbnail"`
	Categories []string `json:"categories"`
	UploadedAt string   `json:"uploadedAt,omitempty"`
}

// Listing is the gallery response: images newest first, plus the
// distinct categories found across them and the sort that was applied.
type Listing struct {
	Images     []Image  `json:"images"`
	Categories []string `json:"categories"`
	Order      string   `json:"order"`
}

// defaultCategory is assigned when an object carries no category
// metadata (or the metadata read fails).
const defaultCategory = "Library"

// orderNewestFirst names the only sort the listing applies.
const orderNewestFirst = "uploadedAt:desc"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"}

// isImageKey reports whether an object key looks like an image file.
func isImageKey(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// nameFromKey extracts the filename from an object key.
func nameFromKey(key string) string {
	return path.Base(key)
}

// parseCategories splits the comma-separated category metadata.
func parseCategories(raw string) []string {
	if raw == "" {
		return []string{defaultCategory}
	}
	var categories []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return []string{defaultCategory}
	}
	return categories
}
