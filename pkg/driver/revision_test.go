package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(name)
	require.NoError(t, err)
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Calc Tests",
			Email: "calc@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestLoadRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "program.yml", "- {type: Print, value: {type: Integer, value: 1}}\n", "first")
	commitFile(t, repo, dir, "program.yml",
		"- {type: Print, value: {type: Integer, value: 1}}\n- {type: Print, value: {type: Integer, value: 2}}\n", "second")

	head, err := LoadRevision(dir, "HEAD", "program.yml")
	require.NoError(t, err)
	require.Len(t, head, 1)
	assert.Equal(t, 2, head[0].Body.Len())

	previous, err := LoadRevision(dir, "HEAD~1", "program.yml")
	require.NoError(t, err)
	require.Len(t, previous, 1)
	assert.Equal(t, 1, previous[0].Body.Len())

	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(nested, 0o755))
	fromSubdir, err := LoadRevision(nested, "HEAD", filepath.Join("..", "program.yml"))
	require.NoError(t, err)
	assert.Len(t, fromSubdir, 1)
}

func TestLoadRevisionErrors(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "program.yml", "- {type: Print, value: {type: Integer, value: 1}}\n", "first")

	_, err = LoadRevision(dir, "HEAD", "missing.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yml")

	_, err = LoadRevision(dir, "no-such-branch", "program.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve no-such-branch")

	_, err = LoadRevision(dir, "HEAD", filepath.Join("..", "outside.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside repository")

	_, err = LoadRevision(t.TempDir(), "HEAD", "program.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open repository")
}
