package httpapi

import (
	"net/http"
	"strings"

	"devhub-engine/internal/events"
	"devhub-engine/internal/github"

	"go.uber.org/zap"
)

type GithubHandler struct {
	Repos    *github.RepoService
	Activity *github.Activity
	Hub      *events.Hub
	Log      *zap.SugaredLogger
}

// warnRateLimited pushes a rate_limit_warning event when a fresh result came
// back quota-blocked. Cached results stay silent; the warning already fired
// when the entry was built.
func (h GithubHandler) warnRateLimited(r *http.Request, scope, subject string) {
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeRateLimitWarning, 1, map[string]any{
		"scope":   scope,
		"subject": subject,
	}))
}

// Technologies serves /github/technologies/{userID}. The user's declared
// stack comes in as ?techs=react,go; absent, the default list applies.
func (h GithubHandler) Technologies(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/github/technologies/")
	if userID == "" || strings.Contains(userID, "/") {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var techs []string
	if raw := strings.TrimSpace(r.URL.Query().Get("techs")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				techs = append(techs, t)
			}
		}
	}

	batch, cached := h.Repos.UserTechnologies(r.Context(), userID, techs)
	if !cached && batch.Message == github.RateLimitMessage {
		h.warnRateLimited(r, "technologies", userID)
	}
	writeJSON(w, map[string]any{
		"success":           batch.Success,
		"technologies":      batch.Technologies,
		"totalTechnologies": batch.TotalTechnologies,
		"message":           batch.Message,
		"cached":            cached,
	})
}

// UserRepos serves /github/repos/{username}.
func (h GithubHandler) UserRepos(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/github/repos/")
	if username == "" || strings.Contains(username, "/") {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}

	res, cached := h.Repos.OwnRepos(r.Context(), username)
	if !cached && res.Message == github.RateLimitMessage {
		h.warnRateLimited(r, "repos", username)
	}
	writeJSON(w, map[string]any{
		"success":      res.Success,
		"repositories": res.Repositories,
		"message":      res.Message,
		"cached":       cached,
	})
}

// ActiveDays serves /github/activity/{username}.
func (h GithubHandler) ActiveDays(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/github/activity/")
	if username == "" || strings.Contains(username, "/") {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}

	days := h.Activity.ActiveDays(r.Context(), username)
	writeJSON(w, map[string]any{
		"username":   username,
		"activeDays": days,
	})
}

// History serves /github/history/{username}.
func (h GithubHandler) History(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/github/history/")
	if username == "" || strings.Contains(username, "/") {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}

	history := h.Activity.CommitHistory(r.Context(), username)
	writeJSON(w, map[string]any{
		"username": username,
		"history":  history,
	})
}
