package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/mchmarny/lingopulse/pkg/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	batchSizeDefault      = 500
	errorThresholdDefault = 10
)

// Window is a named date range, inclusive on both ends, yyyy-mm-dd.
type Window struct {
	Since string `yaml:"since" json:"since"`
	Until string `yaml:"until" json:"until"`
}

// InferenceConfig points at the model scoring service.
type InferenceConfig struct {
	Endpoint string             `yaml:"endpoint" json:"endpoint"`
	Models   dimension.ModelSet `yaml:"models" json:"models"`
}

// BatchConfig tunes classification runs.
type BatchConfig struct {
	Size           int `yaml:"size" json:"size"`
	ErrorThreshold int `yaml:"error_threshold" json:"error_threshold"`
}

// Config is the app configuration, read from ~/.lingopulse/config.yaml.
type Config struct {
	// Database is the embedded database file path or a postgres:// DSN.
	// Empty resolves to data.db in the app home directory.
	Database  string                 `yaml:"database" json:"database"`
	Batch     BatchConfig            `yaml:"batch" json:"batch"`
	Analysis  stats.CoherenceOptions `yaml:"analysis" json:"analysis"`
	Inference InferenceConfig        `yaml:"inference" json:"inference"`

	// Windows are named study periods (e.g. baseline, monitoring, event)
	// commands can reference instead of repeating date flags.
	Windows map[string]Window `yaml:"windows,omitempty" json:"windows,omitempty"`
}

// GetWindow resolves a named window.
func (c *Config) GetWindow(name string) (Window, error) {
	w, ok := c.Windows[name]
	if !ok {
		return Window{}, errors.Errorf("window %q not defined in config", name)
	}
	if w.Since == "" || w.Until == "" {
		return Window{}, errors.Errorf("window %q is missing since or until", name)
	}
	return w, nil
}

func getDefaultConfig() *Config {
	return &Config{
		Batch: BatchConfig{
			Size:           batchSizeDefault,
			ErrorThreshold: errorThresholdDefault,
		},
		Analysis: stats.CoherenceOptions{
			K:               stats.ThresholdKDefault,
			SyncWeight:      stats.SyncWeightDefault,
			AsymmetryWeight: stats.AsymmetryWeightDefault,
			AsymmetryWindow: stats.AsymmetryWindowDefault,
			SmoothingWindow: stats.SmoothingWindowDefault,
			RegimeThreshold: stats.RegimeThresholdDefault,
		},
	}
}

// Save writes the config into its directory.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.Mkdir(dirPath, dirMode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %v", j)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file %v", j)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	log.Debugf("home dir: %s", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		log.Debugf("creating dir: %s", dir)
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
