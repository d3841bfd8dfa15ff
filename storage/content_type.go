package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// Content types of common site assets.
// Lookups go here first so results do not depend on the host mime.types files.
var siteContentTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".txt":  "text/plain",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".ttf":  "application/x-font-ttf",
	".woff": "application/font-woff",
	".pdf":  "application/pdf",
}

// ContentTypeByExt return media type for file name by its extension, without parameters.
// Empty string returned if type is unknown.
func ContentTypeByExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if ct, ok := siteContentTypes[ext]; ok {
		return ct
	}

	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mediaType
}
