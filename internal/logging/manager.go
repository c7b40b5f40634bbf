package logging

import (
	"fmt"
	"sync"

	"joblens/internal/config"
	"joblens/internal/logging/adapters"
	"joblens/internal/logging/types"
)

var (
	globalLogger *MultiLogger
	globalMu     sync.RWMutex
)

// Initialize builds the global logger from configuration. Must be called
// once at startup, before any GetGlobalLogger call that should see real
// adapters.
func Initialize(cfg *config.Config) error {
	logger := NewMultiLogger()
	logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	if len(cfg.Logging.Adapters) == 0 {
		// Default: a single stdout adapter using the top-level format.
		logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{
			Format: cfg.Logging.Format,
		}))
		setGlobal(logger)
		return nil
	}

	for _, ac := range cfg.Logging.Adapters {
		if !ac.Enabled {
			continue
		}

		adapter, err := createAdapter(types.AdapterConfig{
			Name:    ac.Name,
			Type:    ac.Type,
			Enabled: ac.Enabled,
			Options: ac.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", ac.Name, err)
		}

		if err := logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", ac.Name, err)
		}
	}

	setGlobal(logger)
	return nil
}

// GetGlobalLogger returns the process-wide logger. Before Initialize it
// returns a stdout JSON logger so early code paths can still log.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	logger := NewMultiLogger()
	logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "json"}))
	setGlobal(logger)
	return logger
}

func setGlobal(logger *MultiLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// createAdapter builds a logging adapter from its configuration
func createAdapter(ac types.AdapterConfig) (types.LogAdapter, error) {
	switch ac.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(ac.Name, adapters.StdoutConfig{
			Format: getStringOption(ac.Options, "format", "json"),
		}), nil
	case "file":
		return adapters.NewFileAdapter(ac.Name, adapters.FileConfig{
			FilePath:   getStringOption(ac.Options, "file_path", ""),
			Format:     getStringOption(ac.Options, "format", "json"),
			CreateDirs: getBoolOption(ac.Options, "create_dirs", true),
		})
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", ac.Type)
	}
}

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if value, exists := options[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := options[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
	}
	return defaultValue
}
