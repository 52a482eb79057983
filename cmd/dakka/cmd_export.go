// cmd_export.go — `dakka export`: replay a message stream and compile it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozdemirkulaoglu/dakka/internal/export"
	"github.com/ozdemirkulaoglu/dakka/internal/ingest"
	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
	"github.com/ozdemirkulaoglu/dakka/internal/state"
	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func init() {
	exportCmd.Flags().StringP("framework", "f", "", "cypress, playwright, puppeteer, dakka or all")
	exportCmd.Flags().StringP("out", "o", "", "output directory (default <state root>/exports)")
	exportCmd.Flags().Int("tab", 0, "tab to export (default: lowest tab id in the stream)")
	exportCmd.Flags().Bool("stdout", false, "print scripts instead of writing files")
	exportCmd.Flags().Bool("watch", false, "recompile whenever the input file changes")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <messages.ndjson | ->",
	Short: "Compile a recorded message stream into test scripts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toStdout, _ := cmd.Flags().GetBool("stdout")
		watch, _ := cmd.Flags().GetBool("watch")

		frameworks, err := frameworksFor(cfg.Framework)
		if err != nil {
			return err
		}
		outDir := ""
		if !toStdout {
			if outDir, err = resolveOutDir(cfg.OutDir); err != nil {
				return err
			}
		}
		job := exportJob{
			input:      args[0],
			frameworks: frameworks,
			outDir:     outDir,
			stdout:     cmd.OutOrStdout(),
			settings:   recorderSettings(cfg, true),
			log:        logger,
		}
		if cmd.Flags().Changed("tab") {
			tab, _ := cmd.Flags().GetInt("tab")
			job.tab = &tab
		}
		if args[0] == "-" {
			if watch {
				return fmt.Errorf("--watch needs a file, not stdin")
			}
			return job.runReader(cmd.Context(), cmd.InOrStdin())
		}
		if err := job.run(cmd.Context()); err != nil {
			if !watch {
				return err
			}
			logger.Warn("export failed", zap.Error(err))
		}
		if !watch {
			return nil
		}
		return watchFile(cmd.Context(), args[0], logger, func() error {
			return job.run(cmd.Context())
		})
	},
}

// exportJob is one export invocation.
type exportJob struct {
	input      string
	tab        *int // nil: lowest recorded tab
	frameworks []types.Framework
	outDir     string // empty: write to stdout
	stdout     io.Writer
	settings   recorder.Settings
	log        *zap.Logger
}

func (j exportJob) run(ctx context.Context) error {
	f, err := os.Open(j.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return j.runReader(ctx, f)
}

func (j exportJob) runReader(ctx context.Context, r io.Reader) error {
	c := recorder.NewComposer(recorder.WithLogger(j.log), recorder.WithSettings(j.settings))
	stats, err := ingest.Replay(ctx, r, c, j.log)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	j.log.Info("replayed messages",
		zap.Int("lines", stats.Lines),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped))

	tabID, ok := j.pickTab(c)
	if !ok {
		j.log.Warn("no recorded tab, exporting empty scripts")
	}
	tl := c.Snapshot(tabID)

	artifacts, err := compileAll(ctx, j.frameworks, tl)
	if err != nil {
		return err
	}
	for _, art := range artifacts {
		for _, w := range art.Warnings {
			j.log.Warn("export warning", zap.String("framework", string(art.Framework)), zap.String("warning", w))
		}
	}
	if j.outDir == "" {
		for _, art := range artifacts {
			if len(artifacts) > 1 {
				fmt.Fprintf(j.stdout, "// ---- %s ----\n", art.FileName)
			}
			fmt.Fprint(j.stdout, art.Script)
		}
		return nil
	}
	paths, err := writeArtifacts(j.outDir, artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(j.stdout, p)
	}
	return nil
}

func (j exportJob) pickTab(c *recorder.Composer) (int, bool) {
	if j.tab != nil {
		return *j.tab, true
	}
	tabs := c.Tabs()
	if len(tabs) == 0 {
		return 0, false
	}
	if len(tabs) > 1 {
		j.log.Info("several tabs recorded, exporting the first", zap.Ints("tabs", tabs))
	}
	return tabs[0], true
}

// compileAll runs every backend against the same snapshot concurrently.
// Results keep the order of frameworks.
func compileAll(ctx context.Context, frameworks []types.Framework, tl timeline.Timeline) ([]export.Artifact, error) {
	out := make([]export.Artifact, len(frameworks))
	g, _ := errgroup.WithContext(ctx)
	for i, f := range frameworks {
		g.Go(func() error {
			art, err := export.Compile(f, tl)
			if err != nil {
				return err
			}
			out[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeArtifacts writes each artifact to dir/<fileName> and returns the paths.
func writeArtifacts(dir string, artifacts []export.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, len(artifacts))
	var g errgroup.Group
	for i, art := range artifacts {
		g.Go(func() error {
			path := filepath.Join(dir, art.FileName)
			if err := os.WriteFile(path, []byte(art.Script), 0o644); err != nil { // #nosec G306 -- generated test sources
				return fmt.Errorf("write %s: %w", path, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func frameworksFor(name string) ([]types.Framework, error) {
	if name == "all" {
		return export.Frameworks(), nil
	}
	f, err := types.ParseFramework(name)
	if err != nil {
		return nil, err
	}
	if _, err := export.For(f); err != nil {
		return nil, err
	}
	return []types.Framework{f}, nil
}

func resolveOutDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return state.ExportsDir()
}
