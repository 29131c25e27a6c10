package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileStoreMissingFileUsesDefaults(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "settings.toml"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.Equal(t, Default(), store.Values())
	_, ok := store.Values().Get(KeyGeminiAPIKey)
	assert.False(t, ok)
}

func TestFileStoreSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyGeminiAPIKey, "  key-123 "))
	require.NoError(t, store.Set(KeyIsProEnabled, "true"))
	require.NoError(t, store.Set(KeyMaxTextLength, "1200"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	values := reopened.Values()
	assert.Equal(t, "key-123", values.GeminiAPIKey)
	assert.True(t, values.IsProEnabled)
	assert.Equal(t, 1200, values.MaxTextLength)
}

func TestSetRejectsInvalidValues(t *testing.T) {
	store := NewMemoryStore(Values{})

	assert.Error(t, store.Set(KeyIsProEnabled, "maybe"))
	assert.Error(t, store.Set(KeyMaxTextLength, "-4"))
	assert.Error(t, store.Set(Key("font_size"), "12"))
	assert.Equal(t, Default(), store.Values())
}

func TestValuesGet(t *testing.T) {
	values := Default()
	theme, ok := values.Get(KeySelectedTheme)
	assert.True(t, ok)
	assert.Equal(t, "system", theme)

	limit, _ := values.Get(KeyMaxTextLength)
	assert.Equal(t, "5000", limit)

	_, ok = values.Get(Key("unknown"))
	assert.False(t, ok)
}

func TestOpenFileStoreRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("gemini_api_key = ["), 0o600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestFileStoreWatchPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := OpenFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Watch())

	changed := make(chan Values, 4)
	store.OnChange(func(v Values) { changed <- v })

	require.NoError(t, os.WriteFile(path, []byte("selected_language = \"en\"\nmax_text_length = 300\n"), 0o600))

	select {
	case values := <-changed:
		assert.Equal(t, "en", values.SelectedLanguage)
		assert.Equal(t, 300, values.MaxTextLength)
	case <-time.After(3 * time.Second):
		t.Fatal("expected reload after external edit")
	}
}
