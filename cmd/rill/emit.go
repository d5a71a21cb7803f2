package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rill/internal/driver"
	"rill/internal/mir"
)

var (
	emitOutDir     string
	emitTriple     string
	emitDataLayout string
	emitJobs       int
	emitNoCache    bool
	emitCacheDir   string
	emitDumpMIR    bool
)

func init() {
	emitCmd.Flags().StringVarP(&emitOutDir, "out-dir", "o", "", "directory for the .ll outputs (default: next to each input)")
	emitCmd.Flags().StringVar(&emitTriple, "triple", "", "target triple (overrides [target].triple from rill.toml)")
	emitCmd.Flags().StringVar(&emitDataLayout, "datalayout", "", "target datalayout (overrides [target].datalayout from rill.toml)")
	emitCmd.Flags().IntVar(&emitJobs, "jobs", 0, "number of files lowered in parallel (0 = one per CPU)")
	emitCmd.Flags().BoolVar(&emitNoCache, "no-cache", false, "skip the emitted-IR disk cache")
	emitCmd.Flags().StringVar(&emitCacheDir, "cache-dir", "", "cache location (default: the user cache directory)")
	emitCmd.Flags().BoolVar(&emitDumpMIR, "dump-mir", false, "print a readable MIR dump instead of emitting IR")
}

var emitCmd = &cobra.Command{
	Use:   "emit [flags] <input.mir>...",
	Short: "Lower serialized MIR modules to LLVM IR",
	Long:  "Lower one or more .mir files into textual LLVM IR, one .ll file per input.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  emitExecution,
}

func emitExecution(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if !strings.HasSuffix(path, ".mir") {
			return fmt.Errorf("%s: inputs must be .mir files", path)
		}
	}

	if emitDumpMIR {
		return dumpMIRFiles(cmd, args)
	}

	triple, layout := emitTriple, emitDataLayout
	manifest, found, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	if found {
		if triple == "" {
			triple = manifest.Config.Target.Triple
		}
		if layout == "" {
			layout = manifest.Config.Target.DataLayout
		}
	}

	opts := driver.Options{
		OutDir:       emitOutDir,
		TargetTriple: triple,
		DataLayout:   layout,
		Jobs:         emitJobs,
	}
	if !emitNoCache {
		cache, err := driver.OpenCache(emitCacheDir)
		if err != nil {
			return err
		}
		opts.Cache = cache
	}

	results, err := driver.EmitAll(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	for _, res := range results {
		suffix := ""
		if res.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s%s\n", res.Input, res.Output, suffix)
	}
	return nil
}

func dumpMIRFiles(cmd *cobra.Command, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mod, reg, err := mir.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := mir.DumpModule(cmd.OutOrStdout(), mod, reg); err != nil {
			return err
		}
	}
	return nil
}
