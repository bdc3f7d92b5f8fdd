package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/config"
	"github.com/reviewdeck/reviewdeck/pkg/auth"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Layout.CustomThemeDir = t.TempDir()

	client := api.NewClient(cfg.BaseURL, "token", cfg.GetRequestTimeout())
	session := auth.NewSessionConfig(cfg.BaseURL, filepath.Join(t.TempDir(), "token.json"))

	app := NewApp(cfg, client, session, nil, t.TempDir())
	t.Cleanup(app.cleanup)
	return app
}

func TestAppReloadConfig(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, "/", app.Keys.Search)

	updated := config.DefaultConfig()
	updated.Layout.CustomThemeDir = app.Config.Layout.CustomThemeDir
	updated.Keys.Search = "s"
	updated.Keys.Export = "E"
	app.ReloadConfig(updated)

	assert.Equal(t, "s", app.Keys.Search)
	assert.Equal(t, "E", app.Keys.Export)
	assert.Contains(t, app.statusBaseline(), "s to search")
	assert.Contains(t, app.statusBaseline(), "E to export")
}

func TestAppReloadConfigIgnoresNil(t *testing.T) {
	app := newTestApp(t)
	before := app.Keys

	app.ReloadConfig(nil)

	assert.Equal(t, before, app.Keys)
}
