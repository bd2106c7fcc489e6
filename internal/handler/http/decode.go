package http

import (
	"net/http"

	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/httputil"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/validator"
)

const maxBodyBytes = 1 << 20

// decode reads and validates a JSON body into dst. On failure it writes the
// 400 response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, r, err)
		return false
	}
	return true
}
