package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"vcstatus/internal/common"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	SourcePath      string
	ArtifactDir     string
	Seed            int64
	Estimators      int
	TestSize        float64
	MinSamplesSplit int
	MaxDepth        int
	ServerPort      int
	LogLevel        string
	FetchTimeout    time.Duration
}

type ConfigFile struct {
	Data struct {
		SourcePath   string `yaml:"sourcePath"`
		FetchTimeout string `yaml:"fetchTimeout"`
	} `yaml:"data"`

	Training struct {
		Seed            *int64   `yaml:"seed"`
		Estimators      *int     `yaml:"estimators"`
		TestSize        *float64 `yaml:"testSize"`
		MinSamplesSplit *int     `yaml:"minSamplesSplit"`
		MaxDepth        *int     `yaml:"maxDepth"`
	} `yaml:"training"`

	Artifacts struct {
		Dir string `yaml:"dir"`
	} `yaml:"artifacts"`

	System struct {
		ServerPort *int   `yaml:"serverPort"`
		LogLevel   string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.Data.FetchTimeout)
	if err != nil {
		fetchTimeout = 30 * time.Second
	}

	settings := Settings{
		SourcePath:      getEnvOrDefault(common.EnvSourcePath, orString(config.Data.SourcePath, common.DefaultSourcePath)),
		ArtifactDir:     getEnvOrDefault(common.EnvArtifactDir, orString(config.Artifacts.Dir, common.DefaultArtifactDir)),
		Seed:            getInt64FromEnvOrConfig(common.EnvSeed, config.Training.Seed, common.DefaultSeed),
		Estimators:      getIntFromEnvOrConfig(common.EnvEstimators, config.Training.Estimators, common.DefaultEstimators),
		TestSize:        getFloatFromEnvOrConfig(common.EnvTestSize, config.Training.TestSize, common.DefaultTestSize),
		MinSamplesSplit: getIntFromEnvOrConfig(common.EnvMinSamplesSplit, config.Training.MinSamplesSplit, common.DefaultMinSamplesSplit),
		MaxDepth:        getIntFromEnvOrConfig(common.EnvMaxDepth, config.Training.MaxDepth, common.DefaultMaxDepth),
		ServerPort:      getIntFromEnvOrConfig(common.EnvServerPort, config.System.ServerPort, common.DefaultServerPort),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, orString(config.System.LogLevel, common.DefaultLogLevel)),
		FetchTimeout:    getDurationOrDefault(common.EnvFetchTimeout, fetchTimeout),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		SourcePath:      getEnvOrDefault(common.EnvSourcePath, common.DefaultSourcePath),
		ArtifactDir:     getEnvOrDefault(common.EnvArtifactDir, common.DefaultArtifactDir),
		Seed:            getInt64OrDefault(common.EnvSeed, common.DefaultSeed),
		Estimators:      getIntOrDefault(common.EnvEstimators, common.DefaultEstimators),
		TestSize:        getFloatOrDefault(common.EnvTestSize, common.DefaultTestSize),
		MinSamplesSplit: getIntOrDefault(common.EnvMinSamplesSplit, common.DefaultMinSamplesSplit),
		MaxDepth:        getIntOrDefault(common.EnvMaxDepth, common.DefaultMaxDepth),
		ServerPort:      getIntOrDefault(common.EnvServerPort, common.DefaultServerPort),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		FetchTimeout:    getDurationOrDefault(common.EnvFetchTimeout, 30*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getIntFromEnvOrConfig prefers the environment, then an explicit config value, even 0.
func getIntFromEnvOrConfig(key string, configValue *int, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != nil {
		return *configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue *int64, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != nil {
		return *configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue *float64, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != nil {
		return *configValue
	}
	return defaultValue
}

// validateSettings performs range validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.SourcePath == "" {
		return fmt.Errorf("source path cannot be empty")
	}
	if settings.ArtifactDir == "" {
		return fmt.Errorf("artifact directory cannot be empty")
	}

	if settings.Estimators < common.MinEstimators || settings.Estimators > common.MaxEstimators {
		return fmt.Errorf("estimators must be between %d and %d, got %d", common.MinEstimators, common.MaxEstimators, settings.Estimators)
	}
	if settings.TestSize < common.MinTestSize || settings.TestSize > common.MaxTestSize {
		return fmt.Errorf("test size must be between %.1f and %.1f, got %f", common.MinTestSize, common.MaxTestSize, settings.TestSize)
	}
	if settings.MinSamplesSplit < 2 {
		return fmt.Errorf("min samples split must be at least 2, got %d", settings.MinSamplesSplit)
	}
	if settings.MaxDepth < 0 || settings.MaxDepth > common.MaxTreeDepth {
		return fmt.Errorf("max depth must be between 0 (unlimited) and %d, got %d", common.MaxTreeDepth, settings.MaxDepth)
	}
	if settings.ServerPort < common.MinServerPort || settings.ServerPort > common.MaxServerPort {
		return fmt.Errorf("server port must be between %d and %d, got %d", common.MinServerPort, common.MaxServerPort, settings.ServerPort)
	}
	if settings.FetchTimeout < time.Second || settings.FetchTimeout > 10*time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 10m, got %v", settings.FetchTimeout)
	}

	return nil
}
