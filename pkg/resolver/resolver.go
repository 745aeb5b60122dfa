// Package resolver locates the authoritative directory for each sample
// within a project's scan root.
//
// The search is bounded at three directory levels, matching the deepest
// known production layout (current -> patient batch -> sample). If the
// layout ever grows deeper this bound must be revisited.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seqops/bamlink/pkg/errors"
	"github.com/seqops/bamlink/pkg/logging"
	"github.com/seqops/bamlink/pkg/types"
)

// MaxDepth is the number of directory levels searched below the scan
// root (after the optional "current" substitution).
const MaxDepth = 3

// CurrentDirSuffix marks the curated snapshot directory preferred over
// raw run output.
const CurrentDirSuffix = "current"

// Resolver discovers sample directories under project scan roots.
type Resolver struct {
	logger  zerolog.Logger
	fs      types.FS
	exclude []string
}

// New creates a Resolver. exclude lists directory-name suffixes that are
// never descended into or matched (QC results, logs, metrics, ...).
func New(fsys types.FS, exclude []string) *Resolver {
	return &Resolver{
		logger:  logging.GetLogger("resolver"),
		fs:      fsys,
		exclude: exclude,
	}
}

// Resolve scans root for directories matching pattern and merges every
// match into samples under the merge rule (newest modification time
// wins). It returns a PROJECT_NOT_FOUND error when root does not exist,
// which callers must distinguish from an existing but empty project.
func (r *Resolver) Resolve(samples types.ResolvedSamples, root string, pattern *regexp.Regexp, project string) error {
	if _, err := r.fs.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrProjectNotFound, "project %s: scan root %s does not exist", project, root)
		}
		return errors.Wrapf(err, errors.ErrScanFailed, "project %s: cannot stat %s", project, root)
	}

	dirs, err := r.listDirs(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrScanFailed, "project %s: cannot list %s", project, root)
	}

	// Prefer the curated "current" snapshot over raw run output. At most
	// one substitution, never recursive.
	if current, ok := findCurrent(dirs); ok {
		r.logger.Debug().Str("project", project).Str("current", current).Msg("using current directory")
		dirs, err = r.listDirs(current)
		if err != nil {
			return errors.Wrapf(err, errors.ErrScanFailed, "project %s: cannot list %s", project, current)
		}
	}

	for level := 0; level < MaxDepth; level++ {
		if len(dirs) == 0 {
			break
		}

		matched := 0
		var next []string
		for _, dir := range dirs {
			if pattern.MatchString(dir) {
				r.merge(samples, project, dir)
				matched++
				continue
			}
			if level == MaxDepth-1 {
				continue
			}
			sub, err := r.listDirs(dir)
			if err != nil {
				r.logger.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
				continue
			}
			next = append(next, sub...)
		}

		r.logger.Debug().
			Str("project", project).
			Int("level", level).
			Int("candidates", len(dirs)).
			Int("matched", matched).
			Msg("scanned level")

		dirs = next
	}

	return nil
}

// merge applies the merge rule: keep the record with the strictly newer
// modification time. On an exact tie the lexicographically smaller
// project wins, then the smaller path, so results do not depend on
// project processing order.
func (r *Resolver) merge(samples types.ResolvedSamples, project, dir string) {
	info, err := r.fs.Stat(dir)
	if err != nil {
		r.logger.Warn().Err(err).Str("dir", dir).Msg("cannot stat sample directory")
		return
	}

	name := filepath.Base(dir)
	record := types.SampleRecord{Project: project, Dir: dir, ModTime: info.ModTime()}

	prev, ok := samples[name]
	if !ok {
		samples[name] = record
		return
	}

	switch {
	case record.ModTime.After(prev.ModTime):
		samples[name] = record
	case record.ModTime.Equal(prev.ModTime):
		if record.Project < prev.Project ||
			(record.Project == prev.Project && record.Dir < prev.Dir) {
			samples[name] = record
		}
	default:
		r.logger.Debug().
			Str("sample", name).
			Str("kept", prev.Dir).
			Str("dropped", dir).
			Msg("duplicate sample, keeping newer directory")
	}
}

// listDirs returns the subdirectories of path, sorted, minus excluded
// names. Symlinked directories count as directories, like the original
// run layout expects.
func (r *Resolver) listDirs(path string) ([]string, error) {
	entries, err := r.fs.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		if !entry.IsDir() {
			info, err := r.fs.Stat(full)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		if r.excluded(entry.Name()) {
			continue
		}
		dirs = append(dirs, full)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (r *Resolver) excluded(name string) bool {
	for _, suffix := range r.exclude {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// findCurrent returns the first candidate whose name ends with
// CurrentDirSuffix. dirs must be sorted for a deterministic pick.
func findCurrent(dirs []string) (string, bool) {
	for _, dir := range dirs {
		if strings.HasSuffix(filepath.Base(dir), CurrentDirSuffix) {
			return dir, true
		}
	}
	return "", false
}
