package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Sources struct {
		Remotive struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"remotive"`
		Adzuna struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
			AppID   string `yaml:"app_id"`
			AppKey  string `yaml:"app_key"`
			Country string `yaml:"country"`
		} `yaml:"adzuna"`
		Jooble struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"jooble"`
	} `yaml:"sources"`

	Github struct {
		BaseURL string `yaml:"base_url"`
		// Token is the fallback when nothing is stored in the OS keyring.
		Token          string `yaml:"token"`
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"github"`

	Cache struct {
		QueryTTLMinutes    int `yaml:"query_ttl_minutes"`
		ResourceTTLMinutes int `yaml:"resource_ttl_minutes"`
	} `yaml:"cache"`

	Technologies struct {
		Defaults []string `yaml:"defaults"`
	} `yaml:"technologies"`

	RateLimit struct {
		HostReqPerSec float64 `yaml:"host_req_per_sec"`
		HostBurst     int     `yaml:"host_burst"`
	} `yaml:"rate_limit"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
