package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_LoadMissingFile(t *testing.T) {
	cs := NewConfigStore(filepath.Join(t.TempDir(), "missing.yaml"))

	config, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), config)
	assert.True(t, config.NeedsConfiguration())
}

func TestConfigStore_LoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
sources:
  - id: google
    url: https://calendar.google.com/calendar/ical/x/basic.ics
  - url: https://example.org/hallenplan.ics
    name: Hallen
exclude_keywords: [Schultraining, Elternabend]
workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config, err := NewConfigStore(path).Load()
	require.NoError(t, err)

	require.Len(t, config.Sources, 2)
	assert.Equal(t, "google", config.Sources[0].Identifier())
	assert.Equal(t, "Google Calendar", config.Sources[0].Name)
	assert.Equal(t, "https://example.org/hallenplan.ics", config.Sources[1].Identifier())
	assert.Equal(t, "Hallen", config.Sources[1].Name)
	assert.Equal(t, []string{"Schultraining", "Elternabend"}, config.KeywordsFor(models.ModeInvites))
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, "invites", config.OutputDir)
	assert.Equal(t, 30, config.UpdateInterval)
	assert.Equal(t, "info", config.Log.Level)
}

func TestConfigStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources: [: oops"), 0644))
	_, err := NewConfigStore(bad).Load()
	assert.Error(t, err)

	noURL := filepath.Join(dir, "nourl.yaml")
	require.NoError(t, os.WriteFile(noURL, []byte("sources:\n  - name: broken\n"), 0644))
	_, err = NewConfigStore(noURL).Load()
	assert.ErrorContains(t, err, "missing url")
}

func TestConfigStore_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cs := NewConfigStore(path)

	config := models.DefaultConfig()
	config.Sources = []models.ICalSource{models.SourceFromURL("https://app.vereinsplaner.at/feed.ics")}
	config.ExcludeKeywords = []string{"U9"}
	config.Log.File = "/tmp/ics-importer.log"
	require.NoError(t, cs.Save(config))

	loaded, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
