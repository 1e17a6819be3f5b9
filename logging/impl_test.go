package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, _, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, _ := strings.Cut(expectedParts[3], ":")
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)

	test.That(t, actualParts[4:], test.ShouldResemble, expectedParts[4:])
}

func TestConsoleOutput(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{
		name:      "impl",
		level:     NewAtomicLevelAt(DEBUG),
		inUTC:     true,
		appenders: []Appender{NewWriterAppender(notStdout)},
	}

	logger.Infow("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Debugw("impl Debugw", "n", 7)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	DEBUG	impl	logging/impl_test.go:71	impl Debugw	{"n":7}`)

	logger.Infow("impl logw", "joints", 6, "solver", "jacobian")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:75	impl logw	{"joints":6,"solver":"jacobian"}`)

	logger.Sublogger("sub").Warnw("sub warn")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	impl.sub	logging/impl_test.go:79	sub warn`)
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{
		name:      "lvl",
		level:     NewAtomicLevelAt(WARN),
		inUTC:     true,
		appenders: []Appender{NewWriterAppender(notStdout)},
	}

	logger.Debugw("dropped")
	logger.Infow("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Errorw("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel().String(), test.ShouldEqual, "Debug")

	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestObservedLogs(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("attempt failed", "attempt", 2, "position_residual", 0.5)
	logger.Infow("dangling key", "only")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entry := logs.All()[0]
	test.That(t, entry.Message, test.ShouldEqual, "attempt failed")
	test.That(t, entry.ContextMap()["attempt"], test.ShouldEqual, int64(2))
	test.That(t, logs.FilterMessage("dangling key").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[1].ContextMap()["only"], test.ShouldEqual, "unpaired log key")

	logger.Warnw("warned")
	test.That(t, logs.FilterMessage("warned").All()[0].Level, test.ShouldEqual, WARN.AsZap())
	test.That(t, logger.Sync(), test.ShouldBeNil)
}
