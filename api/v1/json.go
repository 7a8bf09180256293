package v1

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tinoosan/fetchr/internal/data"
)

const maxBodyBytes = 1 << 20

// jsonDecoder is implemented by the request types in internal/data.
type jsonDecoder interface {
	FromJSON(r io.Reader) error
}

// decodeJSON validates optional Content-Type, enforces a max body size and
// decodes the body through dst.FromJSON. Unknown fields are tolerated. It
// returns ErrContentType when the Content-Type header is present but not
// acceptable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst jsonDecoder, maxBytes int64, contentTypePrefix string) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, contentTypePrefix) {
		return ErrContentType
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := dst.FromJSON(r.Body); err != nil {
		if errors.Is(err, ErrContentType) {
			return ErrContentType
		}
		return err
	}
	return nil
}

// writeError writes the {"error": msg} body every failure response uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = data.ErrorBody{Error: msg}.ToJSON(w)
}
