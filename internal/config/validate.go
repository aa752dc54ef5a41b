package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything worth
// telling the user about it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Technologies.Defaults = trimList(out.Technologies.Defaults)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Cache.QueryTTLMinutes < 0 {
		res.addErr("cache.query_ttl_minutes must be >= 0")
	}
	if out.Cache.ResourceTTLMinutes < 0 {
		res.addErr("cache.resource_ttl_minutes must be >= 0")
	}

	if out.RateLimit.HostReqPerSec < 0 {
		res.addErr("rate_limit.host_req_per_sec must be >= 0")
	} else if out.RateLimit.HostReqPerSec > 10 {
		res.addWarn("rate_limit.host_req_per_sec is high (%.1f) and may upset upstreams.", out.RateLimit.HostReqPerSec)
	}

	if out.Sources.Adzuna.Enabled {
		if strings.TrimSpace(out.Sources.Adzuna.AppID) == "" {
			res.addErr("sources.adzuna.app_id is required when adzuna is enabled")
		}
		if strings.TrimSpace(out.Sources.Adzuna.AppKey) == "" {
			res.addErr("sources.adzuna.app_key is required when adzuna is enabled")
		}
	}
	if out.Sources.Jooble.Enabled && strings.TrimSpace(out.Sources.Jooble.APIKey) == "" {
		res.addErr("sources.jooble.api_key is required when jooble is enabled")
	}

	if !out.Sources.Remotive.Enabled && !out.Sources.Adzuna.Enabled && !out.Sources.Jooble.Enabled {
		res.addWarn("no job sources enabled; /jobs/search will always return an empty page.")
	}

	if strings.TrimSpace(out.Github.Token) == "" && strings.TrimSpace(out.Github.KeyringAccount) == "" {
		res.addWarn("no github token or keyring account configured; unauthenticated rate limits are very low.")
	}

	return out, res
}
