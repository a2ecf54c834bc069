package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestLevelFiltering(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debugf("dropped %d", 1)
	logger.Info("dropped")
	logger.Warnw("kept", "frame", 3)
	logger.Errorf("kept %s", "too")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("kept").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("kept").All()[0].ContextMap()["frame"], test.ShouldEqual, int64(3))
	test.That(t, logs.FilterMessage("kept too").Len(), test.ShouldEqual, 1)
}

func TestDebugModeContext(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(INFO)

	ctx := context.Background()
	test.That(t, IsDebugMode(ctx), test.ShouldBeFalse)
	logger.CDebugf(ctx, "quiet")
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	ctx = EnableDebugMode(ctx, "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, GetName(ctx), test.ShouldHaveLength, 6)
	logger.CDebugf(ctx, "loud %d", 7)
	logger.CDebugw(ctx, "loud w", "k", "v")
	test.That(t, logs.FilterMessage("loud 7").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("loud w").Len(), test.ShouldEqual, 1)

	test.That(t, GetName(EnableDebugMode(context.Background(), "frame-7")), test.ShouldEqual, "frame-7")
}

func TestSubloggerAndWith(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("tracker").With("session", "abc")
	subsub := sub.Sublogger("search")

	sub.Info("from sub")
	subsub.Info("from subsub")

	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 2)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "tracker")
	test.That(t, entries[0].ContextMap()["session"], test.ShouldEqual, "abc")
	test.That(t, entries[1].LoggerName, test.ShouldEqual, "tracker.search")
	test.That(t, entries[1].ContextMap()["session"], test.ShouldEqual, "abc")

	sub.SetLevel(ERROR)
	sub.Warn("dropped")
	logger.Warn("kept")
	test.That(t, logs.FilterMessage("dropped").Len(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("kept").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]Level{"debug": DEBUG, "INFO": INFO, "warning": WARN, "Error": ERROR} {
		got, err := LevelFromString(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var lvl Level
	test.That(t, lvl.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, lvl, test.ShouldEqual, WARN)
	out, err := ERROR.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"error"`)
}

func TestBlankLogger(t *testing.T) {
	logger := NewBlankLogger("blank")
	logger.Debugw("goes nowhere", "x", 1)
	test.That(t, logger.AsZap(), test.ShouldNotBeNil)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colortrack.log")
	logger, closer := NewFileLogger("file", INFO, path)
	logger.Debug("dropped")
	logger.Sublogger("tracker").Infow("tracked frame", "frame", 7)
	//nolint:errcheck
	logger.Sync()
	test.That(t, closer.Close(), test.ShouldBeNil)

	raw, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 1)

	var entry map[string]interface{}
	test.That(t, json.Unmarshal([]byte(lines[0]), &entry), test.ShouldBeNil)
	test.That(t, entry["msg"], test.ShouldEqual, "tracked frame")
	test.That(t, entry["logger"], test.ShouldEqual, "file.tracker")
	test.That(t, entry["level"], test.ShouldEqual, "INFO")
	test.That(t, entry["frame"], test.ShouldEqual, 7.0)
}
