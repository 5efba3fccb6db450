// Command payslip parses payslip PDFs from the command line and prints JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aashish23092/payslip-extractor/service"
	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/layout"
	"github.com/Aashish23092/payslip-extractor/utils/payslip"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

type options struct {
	password     string
	conceptsFile string
	tolerance    float64
	workers      int
	verbose      bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "payslip",
		Short:        "Extract earnings, deductions and totals from payslip PDFs",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.conceptsFile, "concepts", "", "concept registry YAML (defaults to the built-in registry)")
	root.PersistentFlags().Float64Var(&opts.tolerance, "tolerance", layout.DefaultTolerance, "vertical tolerance for grouping text into rows")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "log progress to stderr")

	parseCmd := &cobra.Command{
		Use:   "parse <payslip.pdf> [more.pdf ...]",
		Short: "Parse payslips, ordered by payment date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, docs, err := prepare(opts, args)
			if err != nil {
				return err
			}
			return writeJSON(out, svc.ParseBatch(cmd.Context(), docs))
		},
	}

	unknownCmd := &cobra.Command{
		Use:   "unknown <payslip.pdf> [more.pdf ...]",
		Short: "List concept codes missing from the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, docs, err := prepare(opts, args)
			if err != nil {
				return err
			}
			return writeJSON(out, svc.DetectUnknownConceptsBatch(cmd.Context(), docs))
		},
	}

	for _, cmd := range []*cobra.Command{parseCmd, unknownCmd} {
		cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password for encrypted PDFs")
		cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "documents parsed concurrently")
	}

	conceptsCmd := &cobra.Command{
		Use:   "concepts",
		Short: "Print the concept registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(opts.conceptsFile)
			if err != nil {
				return err
			}
			return writeJSON(out, map[string]any{
				"version":  registry.Version(),
				"concepts": registry.All(),
			})
		},
	}

	root.AddCommand(parseCmd, unknownCmd, conceptsCmd)
	return root
}

func prepare(opts *options, paths []string) (*service.PayslipService, []service.Document, error) {
	registry, err := loadRegistry(opts.conceptsFile)
	if err != nil {
		return nil, nil, err
	}

	docs := make([]service.Document, 0, len(paths))
	for _, path := range paths {
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
			return nil, nil, fmt.Errorf("%s: expected .pdf file, got %q", path, ext)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, service.Document{Filename: filepath.Base(path), Data: data, Password: opts.password})
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	parser := payslip.NewParser(registry, payslip.WithTolerance(opts.tolerance))
	return service.NewPayslipService(service.NewPDFProcessor(), parser, opts.workers, logger), docs, nil
}

func loadRegistry(path string) (*concepts.Registry, error) {
	if path != "" {
		return concepts.Load(path)
	}
	return concepts.Default()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
