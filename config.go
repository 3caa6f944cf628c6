package neurochain

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config collects every runtime knob in one place. Values come from an
// optional neurochain.yaml overlaid with environment variables; nothing else
// in the codebase reads the environment.
type Config struct {
	// Host and Port bind the HTTP server.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// APIKey guards the HTTP API. Empty disables authentication.
	APIKey string `yaml:"api_key"`

	// MaxInfer caps concurrent inference-running requests globally;
	// MaxInferPerIP caps them per client address.
	MaxInfer      int `yaml:"max_infer"`
	MaxInferPerIP int `yaml:"max_infer_per_ip"`

	// IPBucketTTL is how long an idle per-IP limiter survives.
	IPBucketTTL time.Duration `yaml:"ip_bucket_ttl"`

	// ModelsDir is the root directory for model artifacts.
	ModelsDir string `yaml:"models_dir"`

	// MacroModelPath overrides the macro intent model location.
	MacroModelPath string `yaml:"macro_model_path"`

	// IntentThreshold is the minimum macro classifier confidence.
	IntentThreshold float32 `yaml:"intent_threshold"`

	// MaxMacroDepth bounds recursive macro expansion.
	MaxMacroDepth int `yaml:"max_macro_depth"`

	// OutputLog and RawLog enable the append-only session logs under logs/.
	OutputLog bool `yaml:"output_log"`
	RawLog    bool `yaml:"raw_log"`

	// DBPath locates the run history database.
	DBPath string `yaml:"db_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8081,
		MaxInfer:        2,
		MaxInferPerIP:   0, // derived from MaxInfer when unset
		IPBucketTTL:     10 * time.Minute,
		ModelsDir:       "models",
		IntentThreshold: 0.35,
		MaxMacroDepth:   16,
		DBPath:          "neurochain.db",
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.MaxInfer < 1 {
		cfg.MaxInfer = 1
	}
	if cfg.MaxInferPerIP < 1 {
		cfg.MaxInferPerIP = max(1, cfg.MaxInfer/2)
	}
	if cfg.MacroModelPath == "" {
		cfg.MacroModelPath = filepath.Join(cfg.ModelsDir, "intent_macro", "model.onnx")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("NC_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("NC_MAX_INFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxInfer = n
		}
	}
	if v := os.Getenv("NC_MAX_INFER_PER_IP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxInferPerIP = n
		}
	}
	if v := os.Getenv("NC_IP_BUCKET_TTL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.IPBucketTTL = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("NC_MODELS_DIR"); v != "" {
		c.ModelsDir = v
	}
	if v := os.Getenv("NC_MACRO_MODEL"); v != "" {
		c.MacroModelPath = v
	} else if v := os.Getenv("NC_MACRO_MODEL_PATH"); v != "" {
		c.MacroModelPath = v
	}
	if v := os.Getenv("NC_INTENT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			c.IntentThreshold = float32(f)
		}
	}
	if v := os.Getenv("NC_MAX_MACRO_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxMacroDepth = n
		}
	}
	c.OutputLog = c.OutputLog || envBool("NEUROCHAIN_OUTPUT_LOG")
	c.RawLog = c.RawLog || envBool("NEUROCHAIN_RAW_LOG")
	if v := os.Getenv("NC_DB_PATH"); v != "" {
		c.DBPath = v
	}
}

func envBool(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Addr returns the host:port the server binds.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
