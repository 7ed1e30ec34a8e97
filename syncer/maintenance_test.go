package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/catsync/lockfile"
)

func TestCheckMissing(t *testing.T) {
	p := newProject(t)
	p.write(t, "data/products.json", `[]`)
	p.write(t, "data/categories.json", `[{"id": "c1", "name": "Pizza", "description": "Au feu de bois"}]`)
	p.write(t, "locales/en.json", `{"categories": {"c1": {"name": "Pizza", "description": ""}}}`)

	rep, err := New(p.opts, nil).CheckMissing(context.Background(), runCfg().SourceFiles, []string{"en", "de"})
	require.NoError(t, err)
	require.Len(t, rep.Languages, 2)

	assert.Equal(t, "en", rep.Languages[0].Lang)
	require.Len(t, rep.Languages[0].Missing, 1)
	assert.Equal(t, "categories.c1.description", rep.Languages[0].Missing[0].Key)
	assert.Len(t, rep.Languages[1].Missing, 2)

	_, err = os.Stat(filepath.Join(p.root, "locales", "de.json"))
	assert.True(t, os.IsNotExist(err), "check-missing must not write")
}

func TestGenerateCache(t *testing.T) {
	p := newProject(t)
	p.write(t, "data/products.json", sampleProducts)
	p.write(t, "data/categories.json", sampleCategories)

	eng := New(p.opts, nil)
	n, err := eng.GenerateCache(runCfg().SourceFiles, false)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// A run right after generating the cache has nothing to do.
	cfg := runCfg("en")
	cfg.DryRun = true
	rep, err := eng.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, rep.Changed)
}

func TestGenerateCacheForceDropsStaleRecords(t *testing.T) {
	p := newProject(t)
	p.write(t, "data/products.json", `[]`)
	p.write(t, "data/categories.json", sampleCategories)
	p.write(t, ".cache/translated-refs.json", `{"category": {"gone": {"name": "abc"}}}`)

	eng := New(p.opts, nil)
	_, err := eng.GenerateCache(runCfg().SourceFiles, false)
	require.NoError(t, err)
	lf, err := lockfile.Load(p.opts.CacheFile)
	require.NoError(t, err)
	assert.Contains(t, lf.Checksums["category"], "gone")

	_, err = eng.GenerateCache(runCfg().SourceFiles, true)
	require.NoError(t, err)
	lf, err = lockfile.Load(p.opts.CacheFile)
	require.NoError(t, err)
	assert.NotContains(t, lf.Checksums["category"], "gone")
	assert.Contains(t, lf.Checksums["category"], "c1")
}

func TestReset(t *testing.T) {
	p := newProject(t)
	p.write(t, "data/products.json", `[]`)
	p.write(t, "data/categories.json", sampleCategories)

	eng := New(p.opts, &fakeClient{})
	_, err := eng.Run(context.Background(), runCfg("en"))
	require.NoError(t, err)
	p.write(t, "logs/keep-me.txt", "notes")

	removed, err := eng.Reset([]string{"en", "de"})
	require.NoError(t, err)
	assert.Len(t, removed, 4) // cache, one transcript, fr.json, en.json

	for _, rel := range []string{".cache/translated-refs.json", "locales/fr.json", "locales/en.json"} {
		_, err := os.Stat(filepath.Join(p.root, rel))
		assert.True(t, os.IsNotExist(err), rel)
	}
	logs, err := LogFiles(p.opts.LogsDir)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, "notes", p.read(t, "logs/keep-me.txt"))
	assert.Equal(t, sampleCategories, p.read(t, "data/categories.json"))
}

func TestStatus(t *testing.T) {
	p := newProject(t)
	p.write(t, "data/products.json", `[]`)
	p.write(t, "data/categories.json", `[{"id": "c1", "name": "Pizza", "description": "Au feu de bois"}]`)
	p.write(t, "locales/it.json", `{"categories": {"c1": {"name": "Pizza"}}}`)

	cs, cov, err := New(p.opts, nil).Status(runCfg().SourceFiles, []string{"it"})
	require.NoError(t, err)
	assert.Equal(t, "empty", cs.Summary())
	assert.Equal(t, []Coverage{
		{Lang: "fr", Present: 0, Total: 2},
		{Lang: "it", Present: 1, Total: 2},
	}, cov)
}
