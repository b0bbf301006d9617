package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/scribblenest/internal/common"
)

// writeError turns a service error into a response. Unknown errors are
// logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError

	switch {
	case errors.Is(err, common.ErrDuplicateUser):
		http.Error(w, "User Already Registered", http.StatusBadRequest)
	case errors.Is(err, common.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusBadRequest)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, common.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, common.ErrNoFileProvided):
		http.Error(w, "No file uploaded.", http.StatusBadRequest)
	case errors.Is(err, common.ErrUnsupportedMedia):
		http.Error(w, "Only image uploads are accepted.", http.StatusUnsupportedMediaType)
	case errors.Is(err, common.ErrFileTooLarge), errors.As(err, &tooBig):
		http.Error(w, "File too large.", http.StatusRequestEntityTooLarge)
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
