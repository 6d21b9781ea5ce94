package app

import (
	"context"
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsErrorWhenDatabaseIsUnreachable(t *testing.T) {
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")
	t.Setenv("LEVELDB_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var a *App
	require.NotPanics(t, func() {
		a, err = New(ctx, cfg, logger)
	})
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestClose_ToleratesPartialApp(t *testing.T) {
	a := &App{}
	assert.NoError(t, a.Close(context.Background()))
}
