package types

import (
	"sort"
	"time"
)

// SampleRecord is the authoritative directory resolved for one sample.
type SampleRecord struct {
	// Project is the project the directory was discovered under.
	Project string

	// Dir is the absolute path to the sample directory.
	Dir string

	// ModTime is the directory's modification time, used to reconcile
	// duplicate sample names across levels and projects.
	ModTime time.Time
}

// ResolvedSamples maps a sample name to its best record. At most one
// record is retained per sample name; see the resolver's merge rule.
type ResolvedSamples map[string]SampleRecord

// Names returns the sample names in sorted order for deterministic
// processing.
func (r ResolvedSamples) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LinkOptions controls how the linker materializes the output tree.
type LinkOptions struct {
	// OutDir is the root of the published link tree.
	OutDir string

	// Version is the version label for this publish run (e.g. "V1").
	Version string

	// Suffixes selects which files in a sample directory are linked.
	Suffixes []string

	// Overwrite replaces existing links unconditionally.
	Overwrite bool

	// ReplaceOld replaces an existing link only when the source file is
	// newer than the link's current target.
	ReplaceOld bool

	// Latest maintains a "latest" alias pointing at the versioned
	// directory.
	Latest bool

	// DryRun logs every mutation instead of performing it. Counts are
	// computed exactly as in a real run.
	DryRun bool
}

// ProjectStats counts the work done for one project.
type ProjectStats struct {
	Samples int
	Files   int
}

// Summary accumulates per-project counts over a run.
type Summary map[string]*ProjectStats

// NewSummary seeds a summary with zeroed stats for the given projects so
// that projects with nothing to link still appear in the report.
func NewSummary(projects []string) Summary {
	s := make(Summary, len(projects))
	for _, p := range projects {
		s[p] = &ProjectStats{}
	}
	return s
}

// Stats returns the stats bucket for a project, creating it on demand.
func (s Summary) Stats(project string) *ProjectStats {
	if st, ok := s[project]; ok {
		return st
	}
	st := &ProjectStats{}
	s[project] = st
	return st
}

// Projects returns the project names in sorted order.
func (s Summary) Projects() []string {
	projects := make([]string, 0, len(s))
	for p := range s {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}
