package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orgroles/internal/audit"
	"orgroles/internal/events"
	"orgroles/internal/logger"
	"orgroles/internal/metrics"
	"orgroles/internal/orgcsv"
	"orgroles/internal/rbac"
	"orgroles/internal/store"
)

func newImportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Batch upsert the structure from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var src orgcsv.RecordReader
			if format == "xlsx" || strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
				if src, err = orgcsv.XLSXRecords(f); err != nil {
					return err
				}
			} else {
				src = orgcsv.NewCSVReader(f)
			}

			ctx := cmd.Context()
			dispatcher := events.New(logger.WithComponent(rt.log, "events"))
			defer dispatcher.Close()
			audit.Recorder{DB: rt.db}.Subscribe(dispatcher)

			imp := orgcsv.NewImporter(store.New(rt.db), rbac.Registry{DB: rt.db}, logger.WithComponent(rt.log, "import"))
			rep, err := imp.Import(ctx, src)
			if err != nil {
				metrics.ObserveImportFailure()
				return err
			}
			metrics.ObserveImport(rep)
			rt.log.Info("import complete", zap.String("file", args[0]), zap.Int("rows", rep.Rows), zap.Int("errors", rep.Errors))
			dispatcher.Emit(ctx, events.Event{
				Name:         events.ImportCompleted,
				ResourceType: "structure",
				Data: map[string]any{
					"file":    filepath.Base(args[0]),
					"rows":    rep.Rows,
					"created": rep.Created,
					"reused":  rep.Reused,
					"errors":  rep.Errors,
				},
			})

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rep.String())
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Input format (csv|xlsx); guessed from the extension when empty")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the structure as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown format %q", format)
			}
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			exp := orgcsv.NewExporter(store.New(rt.db), rbac.Registry{DB: rt.db})
			if format == "xlsx" {
				err = exp.WriteXLSX(cmd.Context(), w)
			} else {
				err = exp.WriteCSV(cmd.Context(), w)
			}
			if err != nil {
				return err
			}
			metrics.ObserveExport(format)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv|xlsx)")
	cmd.Flags().StringVarP(&out, "output", "o", "-", "Output file, - for stdout")
	return cmd
}
