package httpapi

import "net/http"

// NewMux wires every route against the injected deps.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{Svc: d.Search, Hub: d.Hub, Log: d.Log}
	mux.HandleFunc("/jobs/search", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Search,
	}))

	// GitHub resources
	gh := GithubHandler{Repos: d.Repos, Activity: d.Activity, Hub: d.Hub, Log: d.Log}
	mux.HandleFunc("/github/technologies/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: gh.Technologies, // expects /github/technologies/{userID}
	}))
	mux.HandleFunc("/github/repos/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: gh.UserRepos, // expects /github/repos/{username}
	}))
	mux.HandleFunc("/github/activity/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: gh.ActiveDays, // expects /github/activity/{username}
	}))
	mux.HandleFunc("/github/history/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: gh.History, // expects /github/history/{username}
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
