package logging

import (
	"context"
	"strings"
	"testing"

	"go.viam.com/test"
)

func verifySetLevels(registry *Registry, expectedMatches map[string]string) bool {
	for name, level := range expectedMatches {
		logger, ok := registry.loggerNamed(name)
		if !ok || !strings.EqualFold(level, logger.GetLevel().String()) {
			return false
		}
	}
	return true
}

func createTestRegistry(loggerNames []string) *Registry {
	registry := newRegistry()
	for _, name := range loggerNames {
		registry.register(name, &impl{name, NewAtomicLevelAt(INFO), true, nil})
	}
	return registry
}

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	type testCfg struct {
		pattern string
		isValid bool
	}

	tests := []testCfg{
		{"ikreach.workspace", true},
		{"ikreach.workspace.*", true},
		{"ikreach.*.jacobian", true},
		{"*.ik", true},
		{"*", true},
		{"ik-reach_2", true},

		{"ikreach..workspace", false},
		{"ikreach.workspace.", false},
		{".ikreach", false},
		{"ikreach.**", false},
		{"_.ikreach", false},
		{"ikreach.-", false},
		{"ikreach workspace", false},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			test.That(t, validatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
		})
	}
}

func TestUpdateLoggerRegistry(t *testing.T) {
	type testCfg struct {
		loggerConfig    []LoggerPatternConfig
		loggerNames     []string
		expectedMatches map[string]string
	}

	tests := []testCfg{
		{
			loggerConfig: []LoggerPatternConfig{{Pattern: "ikreach.workspace", Level: "WARN"}},
			loggerNames:  []string{"ikreach.workspace", "ikreach.workspace.group", "ikreach.ik"},
			expectedMatches: map[string]string{
				"ikreach.workspace":       "WARN",
				"ikreach.workspace.group": "INFO",
				"ikreach.ik":              "INFO",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{{Pattern: "ikreach.*", Level: "DEBUG"}},
			loggerNames:  []string{"ikreach.ik", "ikreach.ik.jacobian", "other"},
			expectedMatches: map[string]string{
				"ikreach.ik":          "DEBUG",
				"ikreach.ik.jacobian": "DEBUG",
				"other":               "INFO",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{Pattern: "ikreach.*", Level: "DEBUG"},
				{Pattern: "ikreach.workspace", Level: "ERROR"},
			},
			loggerNames: []string{"ikreach.workspace", "ikreach.ik"},
			expectedMatches: map[string]string{
				"ikreach.workspace": "ERROR",
				"ikreach.ik":        "DEBUG",
			},
		},
	}

	for _, tc := range tests {
		registry := createTestRegistry(tc.loggerNames)
		err := registry.updateConfig(tc.loggerConfig, NewBlankLogger(""))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, verifySetLevels(registry, tc.expectedMatches), test.ShouldBeTrue)
	}

	// config is applied to loggers registered afterwards
	registry := createTestRegistry(nil)
	test.That(t, registry.updateConfig([]LoggerPatternConfig{{Pattern: "late.*", Level: "error"}}, NewBlankLogger("")), test.ShouldBeNil)
	registry.register("late.arrival", &impl{"late.arrival", NewAtomicLevelAt(INFO), true, nil})
	test.That(t, verifySetLevels(registry, map[string]string{"late.arrival": "ERROR"}), test.ShouldBeTrue)
	test.That(t, registry.updateLoggerLevel("missing", DEBUG), test.ShouldNotBeNil)
	test.That(t, registry.registeredLoggerNames(), test.ShouldResemble, []string{"late.arrival"})
}

func TestParseLoggerPatternConfig(t *testing.T) {
	cfg, err := ParseLoggerPatternConfig("ikreach.workspace=debug")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, LoggerPatternConfig{Pattern: "ikreach.workspace", Level: "debug"})

	for _, bad := range []string{"ikreach", "ikreach..ik=debug", "ikreach=loud"} {
		_, err := ParseLoggerPatternConfig(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestSubloggerRegistered(t *testing.T) {
	root := NewBlankLogger("registrytest")
	sub := root.Sublogger("child")
	named, ok := LoggerNamed("registrytest.child")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, named, test.ShouldEqual, sub)

	test.That(t, UpdateLoggerLevel("registrytest.child", ERROR), test.ShouldBeNil)
	test.That(t, sub.GetLevel(), test.ShouldEqual, ERROR)
	test.That(t, root.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, GetRegisteredLoggerNames(), test.ShouldContain, "registrytest")
}

func TestCDebugw(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(INFO)

	logger.CDebugw(context.Background(), "hidden")
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, len(GetName(ctx)), test.ShouldEqual, 6)
	logger.CDebugw(ctx, "shown", "point", 3)
	test.That(t, logs.FilterMessage("shown").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["traceKey"], test.ShouldEqual, GetName(ctx))

	test.That(t, IsDebugMode(context.Background()), test.ShouldBeFalse)
}
