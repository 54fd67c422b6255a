package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/stretchr/testify/require"
)

func newTestSwitcher(t *testing.T) (*Switcher, *kvdb.BoltDB) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store, err := kvdb.New(logger, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(logger, store), store
}

func TestParse(t *testing.T) {
	type testCase struct {
		value   string
		want    Theme
		wantErr bool
	}

	testCases := []testCase{
		{value: "dark", want: Dark},
		{value: "light", want: Light},
		{value: "Dark", wantErr: true},
		{value: "system", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			theme, err := Parse(tc.value)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownTheme)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, theme)
		})
	}
}

func TestToggle(t *testing.T) {
	require := require.New(t)
	switcher, _ := newTestSwitcher(t)

	current, err := switcher.Current("visitor-1")
	require.NoError(err)
	require.Equal(Dark, current)

	next, err := switcher.Toggle("visitor-1")
	require.NoError(err)
	require.Equal(Light, next)

	current, err = switcher.Current("visitor-1")
	require.NoError(err)
	require.Equal(Light, current)

	other, err := switcher.Current("visitor-2")
	require.NoError(err)
	require.Equal(Dark, other)

	next, err = switcher.Toggle("visitor-1")
	require.NoError(err)
	require.Equal(Dark, next)

	_, err = switcher.Toggle("")
	require.Error(err)
}

func TestSet(t *testing.T) {
	require := require.New(t)
	switcher, _ := newTestSwitcher(t)

	require.NoError(switcher.Set("visitor-1", Light))
	current, err := switcher.Current("visitor-1")
	require.NoError(err)
	require.Equal(Light, current)

	require.ErrorIs(switcher.Set("visitor-1", Theme("sepia")), ErrUnknownTheme)
	require.Error(switcher.Set("", Dark))
}

func TestCorruptPreferenceFallsBackToDefault(t *testing.T) {
	require := require.New(t)
	switcher, store := newTestSwitcher(t)

	require.NoError(store.Set(kvdb.PreferencesBucket, preferenceKey("visitor-1"), "neon"))
	current, err := switcher.Current("visitor-1")
	require.NoError(err)
	require.Equal(Default, current)
}

func TestConcurrentToggles(t *testing.T) {
	require := require.New(t)
	switcher, _ := newTestSwitcher(t)

	errs := make(chan error, 10)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := switcher.Toggle("visitor-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(err)
	}

	// an even number of toggles lands back on the default
	current, err := switcher.Current("visitor-1")
	require.NoError(err)
	require.Equal(Dark, current)
}
