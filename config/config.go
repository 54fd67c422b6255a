package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort          = "8080"
	defaultCorpusURL     = "http://localhost:8080/search.json"
	defaultDebounceDelay = 150 * time.Millisecond
	defaultTitleBoost    = 2.0
	defaultFuzziness     = 0.2
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}
	if len(port) == 0 {
		port = defaultPort
	}

	return port
}

func (c *Config) GetLogLevel() string {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("log.level")
	}

	return level
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return kvdbPath
}

// GetCorpusURL is the endpoint the search widget fetches its documents from.
func (c *Config) GetCorpusURL() string {
	corpusURL := c.config.GetString("CORPUS_URL")
	if len(corpusURL) == 0 {
		corpusURL = c.config.GetString("search.corpus_url")
	}
	if len(corpusURL) == 0 {
		corpusURL = defaultCorpusURL
	}

	return corpusURL
}

func (c *Config) GetDebounceDelay() time.Duration {
	ms := c.config.GetInt("SEARCH_DEBOUNCE_MS")
	if ms <= 0 {
		ms = c.config.GetInt("search.debounce_ms")
	}
	if ms <= 0 {
		return defaultDebounceDelay
	}

	return time.Duration(ms) * time.Millisecond
}

func (c *Config) GetTitleBoost() float64 {
	boost := c.config.GetFloat64("SEARCH_TITLE_BOOST")
	if boost <= 0 {
		boost = c.config.GetFloat64("search.title_boost")
	}
	if boost <= 0 {
		boost = defaultTitleBoost
	}

	return boost
}

// GetFuzziness returns the configured fuzziness. An explicit 0 turns fuzzy
// matching off; only an unset value falls back to the default.
func (c *Config) GetFuzziness() float64 {
	for _, key := range []string{"SEARCH_FUZZINESS", "search.fuzziness"} {
		if c.config.IsSet(key) {
			return max(0, c.config.GetFloat64(key))
		}
	}

	return defaultFuzziness
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
