// Package config loads the application configuration: the reusable core
// sections plus the database, task, and access settings specific to this bot.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/taskbot/core/config"
	coredatabase "github.com/m3rciful/taskbot/core/database"
	"github.com/m3rciful/taskbot/internal/tasks"
)

// TasksConfig holds task-list behaviour settings.
type TasksConfig struct {
	// DateLayouts are the Go time layouts a due date may use. The first one
	// doubles as the example shown in prompts.
	DateLayouts []string `yaml:"date_layouts" envconfig:"TASKS_DATE_LAYOUTS"`
	// CollectAssignee inserts the assignee step into the add dialogue.
	CollectAssignee bool `yaml:"collect_assignee" envconfig:"TASKS_COLLECT_ASSIGNEE"`
	// CaseSensitiveSearch switches keyword search to exact-case matching.
	CaseSensitiveSearch bool `yaml:"case_sensitive_search" envconfig:"TASKS_CASE_SENSITIVE_SEARCH"`
}

// AccessConfig holds the sender allow-list. Telegram user ids are numeric;
// keeping them as int64 avoids the classic never-matching string comparison.
type AccessConfig struct {
	AllowedIDs []int64 `yaml:"allowed_ids" envconfig:"ACCESS_ALLOWED_IDS"`
}

// Config aggregates everything the bot needs at startup.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Tasks    TasksConfig         `yaml:"tasks"`
	Access   AccessConfig        `yaml:"access"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if len(cfg.Tasks.DateLayouts) == 0 {
		cfg.Tasks.DateLayouts = append([]string(nil), tasks.DefaultDateLayouts...)
	}
	return &cfg, nil
}
