package httpapi

import (
	"sync/atomic"

	"devhub-engine/internal/config"
	"devhub-engine/internal/events"
	"devhub-engine/internal/github"
	"devhub-engine/internal/search"

	"go.uber.org/zap"
)

type Deps struct {
	Log *zap.SugaredLogger

	Hub *events.Hub

	// Atomic store of config.Config so PUT /config swaps live
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Search   *search.Service
	Repos    *github.RepoService
	Activity *github.Activity
}
