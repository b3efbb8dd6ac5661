// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Ingest struct {
		RunOnStart    bool `yaml:"run_on_start" json:"run_on_start"`
		IntervalHours int  `yaml:"interval_hours" json:"interval_hours"`
		PageLimit     int  `yaml:"page_limit" json:"page_limit"` // per-feed fetch size where the API supports it
	} `yaml:"ingest" json:"ingest"`

	Sources struct {
		Remotive  SourceToggle `yaml:"remotive" json:"remotive"`
		RemoteOK  SourceToggle `yaml:"remoteok" json:"remoteok"`
		ArbeitNow SourceToggle `yaml:"arbeitnow" json:"arbeitnow"`
		Jobicy    SourceToggle `yaml:"jobicy" json:"jobicy"`
	} `yaml:"sources" json:"sources"`

	LinkedIn struct {
		Enabled   bool     `yaml:"enabled" json:"enabled"`
		Queries   []string `yaml:"queries" json:"queries"`
		Locations []string `yaml:"locations" json:"locations"`
		MaxJobs   int      `yaml:"max_jobs" json:"max_jobs"`
	} `yaml:"linkedin" json:"linkedin"`

	Email struct {
		Enabled          bool     `yaml:"enabled" json:"enabled"`
		IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
		IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
		Username         string   `yaml:"username" json:"username"`
		Mailbox          string   `yaml:"mailbox" json:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
	} `yaml:"email" json:"email"`

	Translate struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		BaseURL string `yaml:"base_url" json:"base_url"` // empty means the default provider endpoint
	} `yaml:"translate" json:"translate"`
}

type SourceToggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
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
