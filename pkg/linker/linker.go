// Package linker materializes the published link tree from a resolved
// sample map: one versioned directory of symlinks per sample, organized
// by patient, with an optional "latest" alias.
//
// Concurrent invocations against the same output tree are unsafe: link
// and alias updates are remove-then-create and can race. Runs must not
// overlap.
package linker

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seqops/bamlink/pkg/errors"
	"github.com/seqops/bamlink/pkg/logging"
	"github.com/seqops/bamlink/pkg/types"
)

// SamplePrefix is stripped from sample names when deriving the patient
// id and the output directory name.
const SamplePrefix = "Sample_"

// LatestName is the name of the alias link pointing at the most recently
// published version.
const LatestName = "latest"

// Linker creates the versioned link tree for resolved samples.
type Linker struct {
	logger zerolog.Logger
	fs     types.FS
	opts   types.LinkOptions
}

// New creates a Linker.
func New(fsys types.FS, opts types.LinkOptions) *Linker {
	return &Linker{
		logger: logging.GetLogger("linker"),
		fs:     fsys,
		opts:   opts,
	}
}

// Materialize publishes links for every resolved sample and returns
// per-project counts. projects pre-seeds the summary so that projects
// with nothing to link still show up with zero counts.
//
// Per-sample and per-file problems are logged and skipped; the only
// fatal condition is the UNSAFE_REMOVE safety guard, which aborts the
// run before any further mutation. The partial summary is returned
// alongside the error in that case.
func (l *Linker) Materialize(samples types.ResolvedSamples, projects []string) (types.Summary, error) {
	summary := types.NewSummary(projects)

	for _, sample := range samples.Names() {
		record := samples[sample]

		files, err := l.matchFiles(record.Dir)
		if err != nil {
			l.logger.Warn().Err(err).Str("sample", sample).Str("dir", record.Dir).Msg("cannot list sample directory, skipping")
			continue
		}
		if len(files) == 0 {
			l.logger.Warn().Str("sample", sample).Str("dir", record.Dir).Msg("no bam files for sample, skipping")
			continue
		}

		sampleDir := strings.TrimPrefix(sample, SamplePrefix)
		basedir := filepath.Join(l.opts.OutDir, PatientID(sample), sampleDir, l.opts.Version)

		if err := l.ensureDir(basedir); err != nil {
			l.logger.Warn().Err(err).Str("sample", sample).Msg("cannot create output directory, skipping")
			continue
		}

		stats := summary.Stats(record.Project)
		stats.Samples++

		for _, src := range files {
			created, err := l.linkFile(src, filepath.Join(basedir, filepath.Base(src)))
			if err != nil {
				// The safety guard is the only fatal error; stop before
				// mutating anything else.
				return summary, err
			}
			if created {
				stats.Files++
			}
		}

		if l.opts.Latest {
			latest := filepath.Join(l.opts.OutDir, PatientID(sample), sampleDir, LatestName)
			l.markLatest(basedir, latest)
		}
	}

	return summary, nil
}

// PatientID derives the patient identifier from a sample name: the first
// two hyphen-delimited tokens, after stripping any Sample_ prefix.
func PatientID(sample string) string {
	sample = strings.TrimPrefix(sample, SamplePrefix)
	tokens := strings.Split(sample, "-")
	if len(tokens) < 2 {
		return sample
	}
	return strings.Join(tokens[:2], "-")
}

// matchFiles lists the files in dir ending in one of the configured
// suffixes. A single directory level, no recursion.
func (l *Linker) matchFiles(dir string) ([]string, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, suffix := range l.opts.Suffixes {
			if strings.HasSuffix(entry.Name(), suffix) {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	return files, nil
}

func (l *Linker) ensureDir(basedir string) error {
	if l.opts.DryRun {
		l.logger.Info().Str("dir", basedir).Msg("would create directory")
		return nil
	}
	l.logger.Info().Str("dir", basedir).Msg("creating directory")
	if err := l.fs.MkdirAll(basedir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", basedir)
	}
	return nil
}

// linkFile reconciles one destination path with its source file and
// reports whether a link was created or replaced.
//
// Dispositions: absent -> create; dangling link -> remove and recreate
// (routine maintenance); valid link -> skip unless Overwrite, or
// ReplaceOld with a source newer than the current target; existing
// non-symlink -> skip, unless policy asks for its removal, which trips
// the safety guard and aborts the run. The guard is the only error this
// method returns; ordinary link failures are per-file skips.
func (l *Linker) linkFile(src, dest string) (bool, error) {
	info, err := l.fs.Lstat(dest)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn().Err(err).Str("dest", dest).Msg("cannot stat destination, skipping")
			return false, nil
		}
		return l.createLink(src, dest), nil
	}

	if info.Mode()&os.ModeSymlink == 0 {
		// A real file or directory sits where the link belongs. Only a
		// removal request makes this fatal.
		if l.removalRequested(src, info.ModTime()) {
			l.logger.Error().Str("dest", dest).Msg("destination exists and is not a symlink, refusing to remove")
			return false, errors.Newf(errors.ErrUnsafeRemove, "refusing to remove %s: not a symlink", dest)
		}
		l.logger.Warn().Str("dest", dest).Msg("destination exists and is not a symlink, skipping")
		return false, nil
	}

	// Destination is a symlink. A dangling one is routine maintenance:
	// remove it and relink.
	if _, statErr := l.fs.Stat(dest); statErr != nil {
		l.logger.Warn().Str("dest", dest).Msg("removing dangling link")
		if !l.removeLink(dest) {
			return false, nil
		}
		return l.createLink(src, dest), nil
	}

	replace := false
	switch {
	case l.opts.Overwrite:
		replace = true
	case l.opts.ReplaceOld:
		replace = l.linkTargetOlder(src, dest)
	}

	if !replace {
		l.logger.Warn().Str("dest", dest).Msg("link exists, skipping")
		return false, nil
	}

	if !l.removeLink(dest) {
		return false, nil
	}
	return l.createLink(src, dest), nil
}

// removalRequested reports whether the active policy would remove an
// existing destination with the given modification time.
func (l *Linker) removalRequested(src string, destModTime time.Time) bool {
	if l.opts.Overwrite {
		return true
	}
	return l.opts.ReplaceOld && l.sourceNewer(src, destModTime)
}

// linkTargetOlder reports whether the source file is strictly newer than
// whatever the existing link at dest currently resolves to.
func (l *Linker) linkTargetOlder(src, dest string) bool {
	targetInfo, err := l.fs.Stat(dest)
	if err != nil {
		return false
	}
	return l.sourceNewer(src, targetInfo.ModTime())
}

func (l *Linker) sourceNewer(src string, destModTime time.Time) bool {
	srcInfo, err := l.fs.Stat(src)
	if err != nil {
		l.logger.Warn().Err(err).Str("src", src).Msg("cannot stat source file")
		return false
	}
	return srcInfo.ModTime().After(destModTime)
}

// createLink makes the symlink (or describes it in dry-run mode) and
// reports whether the link counts as created.
func (l *Linker) createLink(src, dest string) bool {
	if l.opts.DryRun {
		l.logger.Info().Str("src", src).Str("link", dest).Msg("would create symlink")
		return true
	}
	l.logger.Info().Str("src", src).Str("link", dest).Msg("creating symlink")
	if err := l.fs.Symlink(src, dest); err != nil {
		l.logger.Warn().Err(err).Str("link", dest).Msg("failed to create symlink, skipping")
		return false
	}
	return true
}

// removeLink removes an existing symlink (or describes the removal in
// dry-run mode) and reports success.
func (l *Linker) removeLink(dest string) bool {
	if l.opts.DryRun {
		l.logger.Info().Str("link", dest).Msg("would remove existing link")
		return true
	}
	l.logger.Info().Str("link", dest).Msg("removing existing link")
	if err := l.fs.Remove(dest); err != nil {
		l.logger.Warn().Err(err).Str("link", dest).Msg("failed to remove existing link, skipping")
		return false
	}
	return true
}

// markLatest points the latest alias at basedir. The previous alias is
// removed only when it is verifiably a symlink; a real directory named
// "latest" is never touched.
func (l *Linker) markLatest(basedir, latest string) {
	if info, err := l.fs.Lstat(latest); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			l.logger.Warn().Str("path", latest).Msg("latest exists and is not a symlink, leaving it alone")
			return
		}
		if !l.removeLink(latest) {
			return
		}
	}

	l.createLink(basedir, latest)
}
