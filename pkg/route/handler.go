package route

import (
	"net/http"
)

// Handler adapts a Decider to net/http. Paths reach the decider exactly as
// requested; no cleaning or redirecting happens here.
type Handler struct {
	Decider *Decider
}

func NewHandler(decider *Decider) *Handler {
	return &Handler{Decider: decider}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	decision := h.Decider.Decide(r.Context(), RequestFromHTTP(r))
	WriteDecision(w, r, decision)
}
