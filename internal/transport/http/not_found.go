package http

import "net/http"

// NotFoundHandler is the JSON fallback for routes the mux does not know.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
}
