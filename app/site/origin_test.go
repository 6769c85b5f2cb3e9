package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrigin_URLs(t *testing.T) {
	o := Origin{Slug: "acme/legal-hub", Ref: "main"}
	assert.Equal(t, "https://raw.githubusercontent.com/acme/legal-hub/main", o.RawBase())
	assert.Equal(t, "https://acme.github.io/legal-hub", o.PagesBase())

	o.Ref = "feature/x"
	assert.Equal(t, "https://raw.githubusercontent.com/acme/legal-hub/feature%2Fx", o.RawBase())
}

func TestDetectOrigin_Env(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "acme/hub")
	t.Setenv("GITHUB_REF_NAME", "release")

	o, err := DetectOrigin(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Origin{Slug: "acme/hub", Ref: "release"}, o)
}

func TestDetectOrigin_GitDir(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_REF_NAME", "")

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	cfg := "[remote \"origin\"]\n\turl = git@github.com:acme/legal-hub.git\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "config"), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"),
		[]byte("ref: refs/heads/develop\n"), 0o644))

	o, err := DetectOrigin(dir)
	require.NoError(t, err)
	assert.Equal(t, Origin{Slug: "acme/legal-hub", Ref: "develop"}, o)
}

func TestDetectOrigin_DetachedHead(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_REF_NAME", "")

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	cfg := "[remote \"origin\"]\n\turl = https://github.com/acme/hub\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "config"), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"),
		[]byte("0123456789abcdef0123456789abcdef01234567\n"), 0o644))

	o, err := DetectOrigin(dir)
	require.NoError(t, err)
	assert.Equal(t, Origin{Slug: "acme/hub", Ref: "main"}, o)
}

func TestDetectOrigin_NoRepo(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_REF_NAME", "")

	_, err := DetectOrigin(t.TempDir())
	require.Error(t, err)
}
