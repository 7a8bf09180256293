package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	// DefaultTitle names a download whose extractor reported no title.
	DefaultTitle = "download"
	// DefaultExtension is used when the extractor reported no extension.
	DefaultExtension = "tmp"
)

var (
	ErrMissingURL = errors.New("URL not provided")
	ErrInternal   = errors.New("Internal Server Error")
)

// DownloadRequest is the body accepted by POST /download.
type DownloadRequest struct {
	URL string `json:"url"`
}

func (d *DownloadRequest) FromJSON(r io.Reader) error { return json.NewDecoder(r).Decode(d) }

// Result is a fetched media file held in memory. TempPath names the on-disk
// artifact it was read from; the caller owns its removal.
type Result struct {
	Content   *bytes.Reader
	Filename  string
	Extension string
	TempPath  string
}

// NewResult builds a Result from raw bytes and extractor metadata, applying
// the title and extension defaults.
func NewResult(content []byte, title, ext, tempPath string) *Result {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &Result{
		Content:   bytes.NewReader(content),
		Filename:  title + "." + ext,
		Extension: ext,
		TempPath:  tempPath,
	}
}

// Size reports the number of content bytes.
func (r *Result) Size() int64 { return r.Content.Size() }

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func (e ErrorBody) ToJSON(w io.Writer) error { return json.NewEncoder(w).Encode(e) }
