package http

import (
	"context"
	"net/http"
)

// StorefrontRenderer is the minimal interface needed to serve the rendered
// storefront view.
type StorefrontRenderer interface {
	Render(ctx context.Context) (string, error)
}

// HandleStorefrontView returns the current storefront projection as text.
func HandleStorefrontView(sf StorefrontRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := sf.Render(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(content))
	}
}
