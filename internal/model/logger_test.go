package model

import (
	"errors"
	"testing"
)

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Debug("foo")
	logger.Debugf("%s", "foo")
	logger.Info("foo")
	logger.Infof("%s", "foo")
	logger.Warn("foo")
	logger.Warnf("%s", "foo")
}

func TestErrorToStringOrOK(t *testing.T) {
	if ErrorToStringOrOK(nil) != "ok" {
		t.Fatal("unexpected result")
	}
	if ErrorToStringOrOK(errors.New("antani")) != "antani" {
		t.Fatal("unexpected result")
	}
}

func TestValidLoggerOrDefault(t *testing.T) {
	if ValidLoggerOrDefault(nil) != DiscardLogger {
		t.Fatal("expected DiscardLogger")
	}
	var lo Logger = logDiscarder{}
	if ValidLoggerOrDefault(lo) != lo {
		t.Fatal("expected the same logger")
	}
}
