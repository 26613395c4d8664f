// Package obslog is the shared structured logger the simulator kernel and
// command layer log through, so call sites stay as terse as the teacher's
// log.Printf-at-call-site style while the underlying format is structured.
// Grounded on the pack's sajal101agrawal-ts-tracktitans server, which logs
// through gopkg.in/inconshreveable/log15.v2.
package obslog

import log "gopkg.in/inconshreveable/log15.v2"

// Logger is the narrow surface call sites use; New returns one pre-bound
// with a "component" context key.
type Logger struct {
	log log.Logger
}

// New returns a Logger tagged with component, e.g. obslog.New("simulator").
func New(component string) *Logger {
	l := log.New("component", component)
	return &Logger{log: l}
}

func (l *Logger) Info(msg string, ctx ...interface{})  { l.log.Info(msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log.Warn(msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log.Error(msg, ctx...) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log.Debug(msg, ctx...) }

// Crit logs at critical severity and is used for simulator invariant
// breaches softened to a warning rather than a panic (spec §7,
// internal/config's STRICT_INVARIANTS=false path).
func (l *Logger) Crit(msg string, ctx ...interface{}) { l.log.Crit(msg, ctx...) }
