// Package mediatype maps file extensions reported by the extractor to the
// Content-Type sent with a download.
package mediatype

// Default is returned for any extension outside the table.
const Default = "application/octet-stream"

// ContentType returns the content type for ext. Lookup is exact: "MP4" and
// ".mp4" are not in the table and map to Default.
func ContentType(ext string) string {
	switch ext {
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "mkv":
		return "video/x-matroska"
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	case "flv":
		return "video/x-flv"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "pdf":
		return "application/pdf"
	case "txt":
		return "text/plain"
	default:
		return Default
	}
}

// Known reports whether ext has an entry in the table.
func Known(ext string) bool {
	return ContentType(ext) != Default
}
