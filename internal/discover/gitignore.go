package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignoreSet loads and matches .gitignore files, leaning on doublestar
// for glob matching rather than a hand-rolled fast-path matcher. One pattern list
// is accumulated per directory that contains a .gitignore, and a file or
// directory is ignored if it matches a pattern from its own directory or
// any ancestor up to the scanned root.
type gitignoreSet struct {
	patternsByDir map[string][]gitignorePattern
}

type gitignorePattern struct {
	raw       string
	negate    bool
	directory bool
}

func newGitignoreSet(roots []string) *gitignoreSet {
	gs := &gitignoreSet{patternsByDir: make(map[string][]gitignorePattern)}
	for _, root := range roots {
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || !info.IsDir() {
				return nil
			}
			gs.loadDir(path)
			return nil
		})
	}
	return gs
}

func (gs *gitignoreSet) loadDir(dir string) {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return
	}
	defer f.Close()

	var patterns []gitignorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := gitignorePattern{raw: line}
		if strings.HasPrefix(line, "!") {
			p.negate = true
			p.raw = line[1:]
		}
		if strings.HasSuffix(p.raw, "/") {
			p.directory = true
			p.raw = strings.TrimSuffix(p.raw, "/")
		}
		patterns = append(patterns, p)
	}
	if len(patterns) > 0 {
		gs.patternsByDir[filepath.Clean(dir)] = patterns
	}
}

func (gs *gitignoreSet) ignoresDir(path string) bool {
	base := filepath.Base(path)
	if base == ".git" {
		return true
	}
	return gs.matches(path, true)
}

func (gs *gitignoreSet) ignoresFile(path string) bool {
	return gs.matches(path, false)
}

func (gs *gitignoreSet) matches(path string, isDir bool) bool {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ignored := false

	for {
		for _, p := range gs.patternsByDir[filepath.Clean(dir)] {
			if p.directory && !isDir {
				continue
			}
			slashPat := p.raw
			if !strings.Contains(slashPat, "/") {
				slashPat = "**/" + slashPat
			}
			if ok, _ := doublestar.Match(slashPat, name); ok {
				ignored = !p.negate
			} else if ok, _ := doublestar.Match(slashPat, filepath.ToSlash(path)); ok {
				ignored = !p.negate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ignored
}
