package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

func TestConfigInitCommand(t *testing.T) {
	t.Run("global file from --config", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "custom", "deckflow.toml")

		out, err := run(t, "config", "init", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote "+path)

		var cfg entities.Config
		_, err = toml.DecodeFile(path, &cfg)
		require.NoError(t, err)
		assert.Equal(t, 3030, cfg.Server.Port)

		_, err = run(t, "config", "init", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		_, err = run(t, "config", "init", "--config", path, "--force")
		require.NoError(t, err)
	})

	t.Run("local file", func(t *testing.T) {
		dir := isolate(t)
		t.Chdir(dir)

		_, err := run(t, "config", "init", "--local")
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, "deckflow.toml"))
		require.NoError(t, err)
	})
}

func TestConfigShowCommand(t *testing.T) {
	dir := isolate(t)
	deck := writeFile(t, dir, "talk.md", sampleDeck)
	writeFile(t, dir, "deckflow.toml", "[render]\nworkers = 3\n")

	out, err := run(t, "config", "show", deck)
	require.NoError(t, err)
	assert.Contains(t, out, "# source: "+filepath.Join(dir, "deckflow.toml"))

	var cfg entities.Config
	_, err = toml.Decode(out, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Render.Workers)

	t.Setenv("DECKFLOW_WORKERS", "5")
	out, err = run(t, "config", "show", deck)
	require.NoError(t, err)
	_, err = toml.Decode(out, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Render.Workers, "environment overrides the local file")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	dir := isolate(t)
	deck := writeFile(t, dir, "talk.md", sampleDeck)
	writeFile(t, dir, "deckflow.toml", "[server]\nport = 4000\n[layout]\nlegacy = true\n")

	cmd := newServeCmd()
	cmd.SetContext(context.Background())
	cmd.Flags().AddFlagSet(newRootCmd().PersistentFlags())
	require.NoError(t, cmd.ParseFlags([]string{"--port", "5000", "--legacy=false", "--verbose"}))

	cfg, err := loadConfig(cmd, deck)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.False(t, cfg.Layout.Legacy, "explicit flag switches the local setting off")
	assert.Equal(t, "debug", cfg.Logging.Level)

	cmd = newServeCmd()
	cmd.SetContext(context.Background())
	cmd.Flags().AddFlagSet(newRootCmd().PersistentFlags())
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err = loadConfig(cmd, deck)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port, "unset flags do not override")
	assert.True(t, cfg.Layout.Legacy)
}
