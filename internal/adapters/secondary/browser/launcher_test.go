package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/logger"
)

type started struct {
	name string
	args []string
}

func fakeLauncher(browsers []Browser, available ...string) (*Launcher, *[]started) {
	var calls []started
	l := &Launcher{
		browsers: browsers,
		logger:   logger.NewNop(),
		lookPath: func(cmd string) (string, error) {
			for _, a := range available {
				if a == cmd {
					return "/usr/bin/" + cmd, nil
				}
			}
			return "", errors.New("not found")
		},
		start: func(name string, args ...string) error {
			calls = append(calls, started{name: name, args: args})
			return nil
		},
	}
	return l, &calls
}

func TestLauncher_Open(t *testing.T) {
	t.Run("first available candidate", func(t *testing.T) {
		l, calls := fakeLauncher(candidates("linux"), "firefox", "google-chrome")

		require.NoError(t, l.Open("http://127.0.0.1:3030"))
		require.Len(t, *calls, 1)
		assert.Equal(t, "google-chrome", (*calls)[0].name)
		assert.Equal(t, []string{"http://127.0.0.1:3030"}, (*calls)[0].args)
	})

	t.Run("override with arguments", func(t *testing.T) {
		l, calls := fakeLauncher(candidates("linux", "firefox --new-window"), "firefox", "xdg-open")

		require.NoError(t, l.Open("http://localhost:3030"))
		require.Len(t, *calls, 1)
		assert.Equal(t, "firefox", (*calls)[0].name)
		assert.Equal(t, []string{"--new-window", "http://localhost:3030"}, (*calls)[0].args)
	})

	t.Run("no browser", func(t *testing.T) {
		l, calls := fakeLauncher(candidates("linux"))

		err := l.Open("http://localhost:3030")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBrowser)
		assert.Empty(t, *calls)
	})

	t.Run("rejects non http urls", func(t *testing.T) {
		l, calls := fakeLauncher(candidates("linux"), "xdg-open")

		for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "http://", "::"} {
			assert.Error(t, l.Open(target), target)
		}
		assert.Empty(t, *calls)
	})

	t.Run("start failure", func(t *testing.T) {
		l, _ := fakeLauncher(candidates("linux"), "xdg-open")
		l.start = func(string, ...string) error { return errors.New("exec format error") }

		err := l.Open("http://localhost:3030")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "launching xdg-open")
	})
}

func TestLauncher_Detect(t *testing.T) {
	l, _ := fakeLauncher(candidates("darwin"), "open")
	name, err := l.Detect()
	require.NoError(t, err)
	assert.Equal(t, "Default", name)

	l, _ = fakeLauncher(nil)
	_, err = l.Detect()
	assert.ErrorIs(t, err, ErrNoBrowser)
}

func TestCandidates(t *testing.T) {
	windows := candidates("windows")
	require.Len(t, windows, 1)
	assert.Equal(t, "rundll32", windows[0].Command)

	withOverrides := candidates("darwin", "", "  ", "brave")
	require.Len(t, withOverrides, 2)
	assert.Equal(t, "brave", withOverrides[0].Command)
	assert.Equal(t, "open", withOverrides[1].Command)
}

func TestNewLauncher_Env(t *testing.T) {
	t.Setenv(BrowserEnv, "my-browser --flag")
	t.Setenv("BROWSER", "")

	l := NewLauncher(logger.NewNop())
	require.NotEmpty(t, l.browsers)
	assert.Equal(t, "my-browser", l.browsers[0].Command)
	assert.Equal(t, []string{"--flag"}, l.browsers[0].Args)
}
