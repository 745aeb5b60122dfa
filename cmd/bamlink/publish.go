package bamlink

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seqops/bamlink/pkg/config"
	"github.com/seqops/bamlink/pkg/errors"
	"github.com/seqops/bamlink/pkg/filesystem"
	"github.com/seqops/bamlink/pkg/linker"
	"github.com/seqops/bamlink/pkg/report"
	"github.com/seqops/bamlink/pkg/resolver"
	"github.com/seqops/bamlink/pkg/types"
)

// publishOptions carries the flag values shared by the project and all
// commands.
type publishOptions struct {
	configPath  string
	linkVersion string
	outDir      string
	runsDir     string
	sampleRegex string
	dryRun      bool
	overwrite   bool
	replaceOld  bool
	latest      bool
}

func addPublishFlags(cmd *cobra.Command, opts *publishOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.linkVersion, "link-version", "V", "", "Version label for the published links (e.g. V1). Required.")
	flags.StringVarP(&opts.outDir, "outdir", "o", "", "Base directory to create the linked files in")
	flags.StringVarP(&opts.runsDir, "runsdir", "r", "", "Directory containing the projects")
	flags.StringVarP(&opts.sampleRegex, "sample-regex", "s", "", "Pattern for recognizing sample directories")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/bamlink/bamlink.toml)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Print the links and directories to be created without executing them")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "Overwrite any links that already exist")
	flags.BoolVar(&opts.replaceOld, "replace-old", false, "Replace links whose source is newer than the current target")
	flags.BoolVarP(&opts.latest, "latest", "l", false, "Point a latest alias at the published version")

	_ = cmd.MarkFlagRequired("link-version")
}

// effectiveConfig loads the layered config and applies flag overrides on
// top of it.
func (o *publishOptions) effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("outdir") {
		cfg.OutDir = o.outDir
	}
	if flags.Changed("runsdir") {
		cfg.RunsDir = o.runsDir
	}
	if flags.Changed("sample-regex") {
		cfg.SampleRegex = o.sampleRegex
	}

	return cfg, nil
}

// runPublish is the shared project/all flow: resolve every selected
// project into the sample map, materialize the link tree, print the
// summary. With discover set, projects are found by prefix scan under
// the runs directory (minus excludes) instead of being named
// explicitly; only for discovered projects is a missing scan root
// non-fatal.
func runPublish(cmd *cobra.Command, opts *publishOptions, projects, excludes []string, discover bool) error {
	cfg, err := opts.effectiveConfig(cmd)
	if err != nil {
		return err
	}

	pattern, err := cfg.CompileSampleRegex()
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigInvalid, "invalid outdir %s", cfg.OutDir)
	}

	fsys := filesystem.NewOS()

	if discover {
		if projects, err = discoverProjects(fsys, cfg, excludes); err != nil {
			return err
		}
	}

	res := resolver.New(fsys, cfg.ExcludeDirs)
	samples := make(types.ResolvedSamples)

	for _, project := range projects {
		root := filepath.Join(cfg.RunsDir, project, cfg.ScanSubdir)
		if err := res.Resolve(samples, root, pattern, project); err != nil {
			if discover && errors.IsCode(err, errors.ErrProjectNotFound) {
				log.Warn().Str("project", project).Msg("project vanished before scanning, skipping")
				continue
			}
			return err
		}
	}

	lk := linker.New(fsys, types.LinkOptions{
		OutDir:     outDir,
		Version:    opts.linkVersion,
		Suffixes:   cfg.Suffixes,
		Overwrite:  opts.overwrite,
		ReplaceOld: opts.replaceOld,
		Latest:     opts.latest,
		DryRun:     opts.dryRun,
	})

	summary, err := lk.Materialize(samples, projects)
	if err != nil {
		return err
	}

	report.Print(cmd.OutOrStdout(), summary)
	return nil
}

// discoverProjects lists the project directories under runsdir matching
// the configured prefix, minus the excluded names.
func discoverProjects(fsys types.FS, cfg *config.Config, excludes []string) ([]string, error) {
	entries, err := fsys.ReadDir(cfg.RunsDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScanFailed, "cannot list runs directory %s", cfg.RunsDir)
	}

	excluded := make(map[string]bool, len(excludes))
	for _, name := range excludes {
		excluded[name] = true
	}

	var projects []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, cfg.ProjectPrefix) || excluded[name] {
			continue
		}
		projects = append(projects, name)
	}
	return projects, nil
}
