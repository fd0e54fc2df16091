package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"parklot/internal/store"
)

type Config struct {
	Lot struct {
		TotalSlots int    `yaml:"total_slots"`
		DataPath   string `yaml:"data_path"`
	} `yaml:"lot"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`

	Backup store.BackupConfig `yaml:"backup"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Report struct {
		Path string `yaml:"path"`
	} `yaml:"report"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Lot.TotalSlots <= 0 {
		cfg.Lot.TotalSlots = 50
	}
	if cfg.Lot.DataPath == "" {
		cfg.Lot.DataPath = "data/parklot.dat"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "data/parklot_journal.db"
	}
	if cfg.Report.Path == "" {
		cfg.Report.Path = "data/parklot_report.xlsx"
	}

	for _, p := range []string{cfg.Lot.DataPath, cfg.Journal.Path, cfg.Report.Path} {
		if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}
