package logging

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LoggerPatternConfig is an instance of a level specification for a given logger.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

const (
	// e.g. "foo".
	validLoggerSectionName = `[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*`
	// e.g. "foo" or "*".
	validLoggerSectionNameWithWildcard = `(` + validLoggerSectionName + `|\*)`
	// e.g. "foo.*.foo".
	validLoggerSectionsWithWildcard = validLoggerSectionNameWithWildcard + `(\.` + validLoggerSectionNameWithWildcard + `)*`
	// Restricts above regex to be the entire pattern.
	validLoggerName = `^` + validLoggerSectionsWithWildcard + `$`
)

var (
	loggerPatternRegexp  = regexp.MustCompile(validLoggerName)
	globalLoggerRegistry = newRegistry()
)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

func buildRegexFromPattern(pattern string) string {
	var matcher strings.Builder
	matcher.WriteRune('^')
	for _, ch := range pattern {
		switch ch {
		case '*':
			matcher.WriteString(`.*`)
		case '.':
			matcher.WriteString(`\.`)
		default:
			matcher.WriteRune(ch)
		}
	}
	matcher.WriteRune('$')
	return matcher.String()
}

// ParseLoggerPatternConfig parses a "pattern=level" pair, e.g. "ikreach.workspace=debug".
func ParseLoggerPatternConfig(s string) (LoggerPatternConfig, error) {
	pattern, level, ok := strings.Cut(s, "=")
	if !ok {
		return LoggerPatternConfig{}, errors.Errorf("logger level %q is not of the form pattern=level", s)
	}
	if !validatePattern(pattern) {
		return LoggerPatternConfig{}, errors.Errorf("invalid logger pattern %q", pattern)
	}
	if _, err := LevelFromString(level); err != nil {
		return LoggerPatternConfig{}, err
	}
	return LoggerPatternConfig{Pattern: pattern, Level: level}, nil
}

// Registry tracks named loggers so that their levels can be changed by name or pattern.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

func newRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// register stores logger under name, replacing any previous logger with that name, and applies
// the current pattern config to it.
func (lr *Registry) register(name string, logger Logger) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = logger
	for _, lpc := range lr.logConfig {
		if matched, _ := regexp.MatchString(buildRegexFromPattern(lpc.Pattern), name); !matched {
			continue
		}
		if level, err := LevelFromString(lpc.Level); err == nil {
			logger.SetLevel(level)
		}
	}
}

func (lr *Registry) loggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

func (lr *Registry) updateLoggerLevel(name string, level Level) error {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	if !ok {
		return errors.Errorf("logger named %s not recognized", name)
	}
	logger.SetLevel(level)
	return nil
}

// updateConfig stores logConfig for future registrations and applies it to every registered
// logger. Later patterns win over earlier ones. Loggers matching no pattern keep their level.
func (lr *Registry) updateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	lr.mu.Lock()
	lr.logConfig = logConfig
	lr.mu.Unlock()

	appliedConfigs := make(map[string]Level)
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return err
		}
		level, err := LevelFromString(lpc.Level)
		if err != nil {
			return err
		}
		for _, name := range lr.registeredLoggerNames() {
			if r.MatchString(name) {
				appliedConfigs[name] = level
			}
		}
	}

	for name, level := range appliedConfigs {
		if err := lr.updateLoggerLevel(name, level); err != nil {
			return err
		}
	}
	return nil
}

func (lr *Registry) registeredLoggerNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	registeredNames := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		registeredNames = append(registeredNames, name)
	}
	sort.Strings(registeredNames)
	return registeredNames
}

// Exported Functions specifically for use on global logger registry.

// LoggerNamed returns logger with specified name if exists.
func LoggerNamed(name string) (logger Logger, ok bool) {
	return globalLoggerRegistry.loggerNamed(name)
}

// UpdateLoggerLevel assigns level to appropriate logger in the registry.
func UpdateLoggerLevel(name string, level Level) error {
	return globalLoggerRegistry.updateLoggerLevel(name, level)
}

// UpdateLoggerConfig applies level patterns to every registered logger and to loggers registered later.
func UpdateLoggerConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	return globalLoggerRegistry.updateConfig(logConfig, errorLogger)
}

// GetRegisteredLoggerNames returns the sorted names of all loggers in the registry.
func GetRegisteredLoggerNames() []string {
	return globalLoggerRegistry.registeredLoggerNames()
}
