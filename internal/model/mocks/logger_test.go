package mocks

import "testing"

func TestLogger(t *testing.T) {
	var called []string
	lo := &Logger{
		MockDebug:  func(message string) { called = append(called, "Debug") },
		MockDebugf: func(format string, v ...interface{}) { called = append(called, "Debugf") },
		MockInfo:   func(message string) { called = append(called, "Info") },
		MockInfof:  func(format string, v ...interface{}) { called = append(called, "Infof") },
		MockWarn:   func(message string) { called = append(called, "Warn") },
		MockWarnf:  func(format string, v ...interface{}) { called = append(called, "Warnf") },
	}
	lo.Debug("x")
	lo.Debugf("%s", "x")
	lo.Info("x")
	lo.Infof("%s", "x")
	lo.Warn("x")
	lo.Warnf("%s", "x")
	if len(called) != 6 {
		t.Fatal("unexpected calls", called)
	}
}
