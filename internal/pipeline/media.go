package pipeline

import (
	"path/filepath"
	"strings"
)

// Recognized media file extensions (lowercase, with leading dot). ffmpeg
// picks the output muxer from the extension, so output paths must use one.
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".ogv":  true,
	".gif":  true,
}

// IsMediaPath reports whether path has a recognized media extension.
func IsMediaPath(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}
