// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("run", "abc")

	l.Debug("debug msg", "k", 1)
	l.Info("info msg")
	l.Warn("warn msg", "pmid", 42)
	l.Error("error msg")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "warn msg", entries[2].Message)

	ctx := entries[2].ContextMap()
	assert.Equal(t, "abc", ctx["run"])
	assert.EqualValues(t, 42, ctx["pmid"])
}

func TestNopDiscards(t *testing.T) {
	var s Sink = Nop()
	s.Info("nothing happens")
	s.Error("still nothing")
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode, true)
		require.NoError(t, err, mode)
		l.Debug("hello", "mode", mode)
	}
}
