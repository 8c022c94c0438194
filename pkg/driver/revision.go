package driver

import (
	"fmt"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
)

// LoadRevision decodes the program documents stored at path in the given
// revision (commit hash, branch, tag or expression such as HEAD~1) of the
// git repository enclosing repoDir. A relative path is taken relative to
// repoDir.
func LoadRevision(repoDir, revision, path string) ([]*ast.Program, error) {
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("revision: open repository %s: %w", repoDir, err)
	}
	rel, err := repoRelativePath(repo, repoDir, path)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("revision: resolve %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("revision: commit %s: %w", hash, err)
	}
	file, err := commit.File(rel)
	if err != nil {
		return nil, fmt.Errorf("revision: %s at %s: %w", rel, revision, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("revision: read %s at %s: %w", rel, revision, err)
	}
	defer reader.Close()
	programs, err := DecodePrograms(reader)
	if err != nil {
		return nil, fmt.Errorf("revision: %s at %s: %w", rel, revision, err)
	}
	return programs, nil
}

func repoRelativePath(repo *git.Repository, repoDir, path string) (string, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("revision: worktree: %w", err)
	}
	root, err := filepath.Abs(worktree.Filesystem.Root())
	if err != nil {
		return "", fmt.Errorf("revision: resolve worktree root: %w", err)
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(repoDir, path)
	}
	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", fmt.Errorf("revision: resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("revision: %s is outside repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}
