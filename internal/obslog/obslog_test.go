package obslog

import "testing"

// These exercise only that New and every level method are callable without
// panicking; log15's default handler writes to stderr, which has nothing
// useful to assert on in a unit test.
func TestLoggerLevelsDoNotPanic(t *testing.T) {
	l := New("test")
	l.Debug("debug message", "k", 1)
	l.Info("info message", "k", 2)
	l.Warn("warn message", "k", 3)
	l.Error("error message", "k", 4)
	l.Crit("crit message", "k", 5)
}
