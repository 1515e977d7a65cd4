// Package rtlog provides the SoC runtime kernel's shared logging sink.
//
// Every package in this module logs through the package-level logger
// here instead of calling fmt.Println or the stdlib log package
// directly, so an embedding host (a language server, a CLI, a test
// harness) can redirect or silence output with SetLogger.
package rtlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// SetLogger replaces the package-wide logger. Passing nil restores the
// no-op logger, discarding all output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debugw(msg string, kv ...interface{}) { current().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { current().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { current().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { current().Errorw(msg, kv...) }
