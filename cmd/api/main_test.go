package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/01moynul/wholesale-shop/internal/config"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/observability"
)

func TestRunFlushesTracesWhenStartupFails(t *testing.T) {
	prev := setupTracing
	t.Cleanup(func() { setupTracing = prev })

	flushed := 0
	setupTracing = func(context.Context, observability.TracingConfig) (observability.ShutdownFunc, error) {
		return func(context.Context) error {
			flushed++
			return errors.New("collector unreachable")
		}, nil
	}

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := &config.Config{
		Port:   "0",
		AppEnv: "production",
		DB:     database.Config{Driver: "postgres"},
	}

	err := run(cfg, zap.New(core))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to database")
	assert.Equal(t, 1, flushed)
	assert.Equal(t, 1, logs.FilterMessage("failed to flush traces").Len())
}
