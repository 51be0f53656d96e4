package inngest

import "net/http"

// InngestClient exposes the handler for /api/inngest and lets the rest of
// the app emit events to registered functions.
type InngestClient interface {
	Serve() http.Handler
	SendEvent(name string, data map[string]any)
}
