package httpapi

import (
	"net/http"

	"devhub-engine/internal/events"
	"devhub-engine/internal/search"

	"go.uber.org/zap"
)

type JobsHandler struct {
	Svc *search.Service
	Hub *events.Hub
	Log *zap.SugaredLogger
}

type searchResponse struct {
	Jobs   any               `json:"jobs"`
	Total  int               `json:"total"`
	Cached bool              `json:"cached"`
	Errors map[string]string `json:"errors"`
}

func (h JobsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := search.ParseQuery(r.URL.Query())

	res, cached := h.Svc.Search(r.Context(), q)

	reqID := RequestIDFrom(r.Context())
	if !cached {
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSearchCompleted, 1, map[string]any{
			"total":  res.Total,
			"errors": len(res.Errors),
		}))
		for source, reason := range res.Errors {
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourceFailed, 1, map[string]any{
				"source": source,
				"reason": reason,
			}))
		}
	}

	writeJSON(w, searchResponse{
		Jobs:   res.Jobs,
		Total:  res.Total,
		Cached: cached,
		Errors: res.Errors,
	})
}
