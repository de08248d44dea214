package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewRespectsLevel(t *testing.T) {
	log, err := New("production", "warn")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info to be disabled at warn level")
	}
	if !log.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("expected warn to be enabled")
	}
}

func TestNewDevelopmentDefaultsToDebug(t *testing.T) {
	log, err := New("development", "bogus")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug to be enabled in development")
	}
}
