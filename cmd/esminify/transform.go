package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/pkg/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type transformFlags struct {
	outdir     string
	root       string
	sourcemap  bool
	inlineMap  bool
	noMinify   bool
	engine     string
	timing     bool
	configPath string
	ignoreFile string
	logLevel   string
	color      bool

	// Set when the config file chose a color mode
	colorFromConfig bool
}

var transformOpts transformFlags

var transformCmd = newTransformCmd(&transformOpts)

func newTransformCmd(opts *transformFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform [files...]",
		Short: "Minify files, or stdin when no files are given",
		Long: `Minify each file and write the result to --outdir, or to stdout when no
output directory is given. Directories are searched for .js, .mjs and .cjs
files. Files are processed concurrently. Diagnostics are printed to stderr and
the command fails if any file fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.outdir, "outdir", "", "Directory to write output files to")
	cmd.Flags().StringVar(&opts.root, "root", "", "Directory that file names are reported relative to (default: current directory)")
	cmd.Flags().BoolVar(&opts.sourcemap, "sourcemap", false, "Write a .map file next to each output file")
	cmd.Flags().BoolVar(&opts.inlineMap, "inline-sourcemap", false, "Embed the source map in the output as a data URL")
	cmd.Flags().BoolVar(&opts.noMinify, "no-minify", false, "Copy input through unchanged")
	cmd.Flags().StringVar(&opts.engine, "engine", "esbuild", "Minifier engine: esbuild or tdewolff")
	cmd.Flags().BoolVar(&opts.timing, "timing", false, "Print how long each pass took")
	cmd.Flags().StringVar(&opts.ignoreFile, "ignore-file", "", "Gitignore-style patterns for files to skip in directories (default: <root>/"+defaultIgnoreFile+")")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: verbose, info, warning, error, or silent")
	cmd.Flags().BoolVar(&opts.color, "color", false, "Force terminal colors on or off (default: auto)")
	return cmd
}

// Values from the config file only apply to flags that weren't given
func (opts *transformFlags) applyConfig(cmd *cobra.Command, config *fileConfig) {
	changed := cmd.Flags().Changed
	if config.Engine != "" && !changed("engine") {
		opts.engine = config.Engine
	}
	if config.Sourcemap != nil && !changed("sourcemap") {
		opts.sourcemap = *config.Sourcemap
	}
	if config.Color != nil && !changed("color") {
		opts.color = *config.Color
		opts.colorFromConfig = true
	}
	if config.LogLevel != "" && !changed("log-level") {
		opts.logLevel = config.LogLevel
	}
	if config.Outdir != "" && !changed("outdir") {
		opts.outdir = config.Outdir
	}
	if config.Root != "" && !changed("root") {
		opts.root = config.Root
	}
	if config.IgnoreFile != "" && !changed("ignore-file") {
		opts.ignoreFile = config.IgnoreFile
	}
	if config.Timing != nil && !changed("timing") {
		opts.timing = *config.Timing
	}
	if config.NoMinify != nil && !changed("no-minify") {
		opts.noMinify = *config.NoMinify
	}
}

func parseEngine(text string) (api.Engine, error) {
	switch text {
	case "esbuild", "":
		return api.EngineESBuild, nil
	case "tdewolff":
		return api.EngineTdewolff, nil
	default:
		return 0, fmt.Errorf("Invalid engine: %q (valid: esbuild, tdewolff)", text)
	}
}

func parseLogLevel(text string) (api.LogLevel, error) {
	switch text {
	case "verbose":
		return api.LogLevelVerbose, nil
	case "info", "":
		return api.LogLevelInfo, nil
	case "warning":
		return api.LogLevelWarning, nil
	case "error":
		return api.LogLevelError, nil
	case "silent":
		return api.LogLevelSilent, nil
	default:
		return 0, fmt.Errorf("Invalid log level: %q (valid: verbose, info, warning, error, silent)", text)
	}
}

type transformJob struct {
	inputPath  string
	filename   string
	outputPath string
	code       string
	output     string
	sourceMap  string
	failed     bool
}

func runTransform(cmd *cobra.Command, opts *transformFlags, args []string) error {
	if opts.configPath != "" {
		config, err := loadConfig(opts.configPath)
		if err != nil {
			return err
		}
		opts.applyConfig(cmd, config)
	}

	engine, err := parseEngine(opts.engine)
	if err != nil {
		return err
	}
	if opts.timing && !cmd.Flags().Changed("log-level") {
		opts.logLevel = "verbose"
	}
	level, err := parseLogLevel(opts.logLevel)
	if err != nil {
		return err
	}
	colorExplicit := cmd.Flags().Changed("color") || opts.colorFromConfig
	color := api.ColorIfTerminal
	if colorExplicit {
		if opts.color {
			color = api.ColorAlways
		} else {
			color = api.ColorNever
		}
	}

	if opts.sourcemap && opts.inlineMap {
		return fmt.Errorf("Cannot use both \"--sourcemap\" and \"--inline-sourcemap\"")
	}

	base := api.TransformOptions{
		SourceMaps: opts.sourcemap || opts.inlineMap,
		Engine:     engine,
		LogLevel:   level,
		Color:      color,
		Timing:     opts.timing,
	}

	if len(args) == 0 {
		return transformStdin(cmd, opts, base)
	}

	if opts.sourcemap && opts.outdir == "" {
		return fmt.Errorf("Cannot use \"--sourcemap\" without \"--outdir\"")
	}

	root := opts.root
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return err
	}

	ignore, err := loadIgnore(root, opts.ignoreFile)
	if err != nil {
		return err
	}
	files, err := expandInputs(root, args, ignore)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("No input files found")
	}

	start := time.Now()
	jobs := make([]transformJob, len(files))
	for i, path := range files {
		jobs[i].inputPath = path
		if err := jobs[i].locate(root, opts.outdir); err != nil {
			return err
		}
	}
	if err := checkOutputPaths(jobs); err != nil {
		return err
	}

	var failures int32
	group, ctx := errgroup.WithContext(cmd.Context())
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i := range jobs {
		job := &jobs[i]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := job.read(); err != nil {
				return err
			}
			job.run(base, opts.noMinify, opts.inlineMap)
			if job.failed {
				atomic.AddInt32(&failures, 1)
				return nil
			}
			if opts.outdir != "" {
				return job.write()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	// Without an output directory, results go to stdout in argument order
	if opts.outdir == "" {
		out := cmd.OutOrStdout()
		for _, job := range jobs {
			if job.failed {
				continue
			}
			if _, err := io.WriteString(out, job.output+"\n"); err != nil {
				return err
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d %s failed", failures, len(files), pluralFiles(len(files)))
	}

	if level == api.LogLevelInfo || level == api.LogLevelVerbose {
		stderr := cmd.ErrOrStderr()
		styles := newSummaryStyles(summaryColorEnabled(stderr, colorExplicit, opts.color))
		writeSummary(stderr, styles, len(files), time.Since(start))
	}
	return nil
}

func pluralFiles(count int) string {
	if count == 1 {
		return "file"
	}
	return "files"
}

func isTerminal(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func transformStdin(cmd *cobra.Command, opts *transformFlags, base api.TransformOptions) error {
	in := cmd.InOrStdin()
	if isTerminal(in) {
		return fmt.Errorf("No input files (and stdin is a terminal)")
	}
	if opts.sourcemap {
		return fmt.Errorf("Cannot use \"--sourcemap\" when reading from stdin (use \"--inline-sourcemap\" instead)")
	}

	buffer := bytes.Buffer{}
	if _, err := buffer.ReadFrom(in); err != nil {
		return fmt.Errorf("Could not read from stdin: %w", err)
	}

	job := transformJob{filename: "<stdin>", code: buffer.String()}
	job.run(base, opts.noMinify, opts.inlineMap)
	if job.failed {
		return fmt.Errorf("1 of 1 file failed")
	}
	_, err := io.WriteString(cmd.OutOrStdout(), job.output+"\n")
	return err
}

// Works out the reported name and output location. The reported name is
// relative to the root so maps and diagnostics don't leak absolute paths.
func (job *transformJob) locate(root string, outdir string) error {
	absPath, err := filepath.Abs(job.inputPath)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(absPath)
	}
	job.filename = filepath.ToSlash(rel)

	if outdir != "" {
		job.outputPath = filepath.Join(outdir, rel)
	}
	return nil
}

// Files outside the root are written under their base name, so two of them
// can end up with the same output path
func checkOutputPaths(jobs []transformJob) error {
	seen := make(map[string]string)
	for _, job := range jobs {
		if job.outputPath == "" {
			continue
		}
		if other, ok := seen[job.outputPath]; ok {
			return fmt.Errorf("Both %q and %q would be written to %q", other, job.inputPath, job.outputPath)
		}
		seen[job.outputPath] = job.inputPath
	}
	return nil
}

func (job *transformJob) read() error {
	contents, err := os.ReadFile(job.inputPath)
	if err != nil {
		return fmt.Errorf("Could not read %q: %w", job.inputPath, err)
	}
	job.code = string(contents)
	return nil
}

func (job *transformJob) run(base api.TransformOptions, noMinify bool, inlineMap bool) {
	if noMinify {
		job.output = job.code
		return
	}

	options := base
	options.Filename = job.filename
	options.Code = job.code
	result := api.Transform(options)
	if result.Diagnostics != nil {
		job.failed = true
		return
	}
	job.output = result.Code
	if inlineMap && result.Map != "" {
		job.output += "\n" + helpers.InlineSourceMappingURL(result.Map)
	} else {
		job.sourceMap = result.Map
	}
}

func (job *transformJob) write() error {
	if err := os.MkdirAll(filepath.Dir(job.outputPath), 0755); err != nil {
		return err
	}

	output := job.output
	if job.sourceMap != "" {
		mapPath := job.outputPath + ".map"
		if err := os.WriteFile(mapPath, []byte(job.sourceMap), 0644); err != nil {
			return err
		}
		output += "\n//# sourceMappingURL=" + filepath.Base(mapPath)
	}

	return os.WriteFile(job.outputPath, []byte(output+"\n"), 0644)
}
