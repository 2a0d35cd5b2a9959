package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TaskSet     TaskSet     `yaml:"taskset"`
	Reward      Reward      `yaml:"reward"`
	Eval        Eval        `yaml:"eval"`
	Checkpoints Checkpoints `yaml:"checkpoints"`
	Monitoring  Monitoring  `yaml:"monitoring"`
	Results     Results     `yaml:"results"`
}

type TaskSet struct {
	Path   string `yaml:"path"`
	Name   string `yaml:"name"`
	Split  string `yaml:"split"`
	Format Format `yaml:"format"`
}

// Format maps raw task-set record fields to the names the loader expects.
type Format struct {
	PromptKey      string `yaml:"prompt_key"`
	ResponseKey    string `yaml:"response_key"`
	FailureTypeKey string `yaml:"failure_type_key"`
}

type Reward struct {
	AvoidedThreshold float64 `yaml:"avoided_threshold"`
	QualityThreshold float64 `yaml:"quality_threshold"`
	ExpectedMinChars int     `yaml:"expected_min_chars"`
	ExpectedMaxChars int     `yaml:"expected_max_chars"`
}

type Eval struct {
	Interval       int `yaml:"interval"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	Workers        int `yaml:"workers"`
}

type Checkpoints struct {
	Dir         string   `yaml:"dir"`
	GenerateCmd []string `yaml:"generate_cmd"`
}

type Monitoring struct {
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Addr    string `yaml:"addr"`
	EnvFile string `yaml:"env_file"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TaskSet.Path == "" {
		return fmt.Errorf("taskset path is required")
	}
	if cfg.TaskSet.Name == "" {
		base := filepath.Base(cfg.TaskSet.Path)
		cfg.TaskSet.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	switch cfg.TaskSet.Split {
	case "", "train", "test":
	default:
		return fmt.Errorf("taskset split must be train or test, got %q", cfg.TaskSet.Split)
	}
	if cfg.TaskSet.Format.PromptKey == "" {
		cfg.TaskSet.Format.PromptKey = "prompt"
	}
	if cfg.TaskSet.Format.ResponseKey == "" {
		cfg.TaskSet.Format.ResponseKey = "failed_response"
	}
	if cfg.TaskSet.Format.FailureTypeKey == "" {
		cfg.TaskSet.Format.FailureTypeKey = "failure_type"
	}

	if cfg.Reward.AvoidedThreshold == 0 {
		cfg.Reward.AvoidedThreshold = 0.7
	}
	if cfg.Reward.QualityThreshold == 0 {
		cfg.Reward.QualityThreshold = 0.5
	}
	if cfg.Reward.AvoidedThreshold < 0 || cfg.Reward.AvoidedThreshold > 1 {
		return fmt.Errorf("reward avoided_threshold must be in [0,1], got %v", cfg.Reward.AvoidedThreshold)
	}
	if cfg.Reward.QualityThreshold < 0 || cfg.Reward.QualityThreshold > 1 {
		return fmt.Errorf("reward quality_threshold must be in [0,1], got %v", cfg.Reward.QualityThreshold)
	}
	if cfg.Reward.ExpectedMinChars == 0 {
		cfg.Reward.ExpectedMinChars = 200
	}
	if cfg.Reward.ExpectedMaxChars == 0 {
		cfg.Reward.ExpectedMaxChars = 1600
	}
	if cfg.Reward.ExpectedMinChars < 0 || cfg.Reward.ExpectedMinChars >= cfg.Reward.ExpectedMaxChars {
		return fmt.Errorf("reward expected char range %d-%d is invalid", cfg.Reward.ExpectedMinChars, cfg.Reward.ExpectedMaxChars)
	}

	if cfg.Eval.Interval == 0 {
		cfg.Eval.Interval = 100
	}
	if cfg.Eval.Interval < 0 {
		return fmt.Errorf("eval interval must be positive")
	}
	if cfg.Eval.TimeoutSeconds == 0 {
		cfg.Eval.TimeoutSeconds = 120
	}
	if cfg.Eval.TimeoutSeconds < 0 {
		return fmt.Errorf("eval timeout_seconds must be positive")
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = 4
	}
	if cfg.Eval.Workers < 1 {
		return fmt.Errorf("eval workers must be at least 1")
	}

	switch cfg.Monitoring.Kind {
	case "":
		cfg.Monitoring.Kind = "log"
	case "log", "http", "redis":
	default:
		return fmt.Errorf("monitoring kind must be log, http or redis, got %q", cfg.Monitoring.Kind)
	}
	if cfg.Monitoring.Kind == "http" && cfg.Monitoring.URL == "" {
		return fmt.Errorf("monitoring url is required for http sink")
	}
	if cfg.Monitoring.Kind == "redis" && cfg.Monitoring.Addr == "" {
		cfg.Monitoring.Addr = "localhost:6379"
	}

	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	return nil
}
