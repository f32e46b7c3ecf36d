package shared

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./ciguard.db"
	} `yaml:"database"`

	Scan struct {
		Sources           []string `yaml:"sources"`            // ["./samples"]
		SeverityThreshold string   `yaml:"severity_threshold"` // "LOW"|"MEDIUM"|"HIGH"
		DisabledRules     []string `yaml:"disabled_rules"`
		RulesPack         string   `yaml:"rules_pack"` // optional YAML rule pack
	} `yaml:"scan"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	API struct {
		Addr              string   `yaml:"addr"` // ":8080"
		AllowedOrigins    []string `yaml:"allowed_origins"`
		SessionTTLMinutes int      `yaml:"session_ttl_minutes"`
	} `yaml:"api"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./ciguard.db"
	c.Scan.SeverityThreshold = "LOW"
	c.Reporting.OutDir = "./reports"
	c.API.Addr = ":8080"
	c.API.SessionTTLMinutes = 720
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("CIGUARD_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CIGUARD_SEVERITY"); v != "" {
		c.Scan.SeverityThreshold = v
	}
	if v := os.Getenv("CIGUARD_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("CIGUARD_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("CIGUARD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CIGUARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c, nil
}
