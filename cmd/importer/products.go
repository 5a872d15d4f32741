package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"inventapro/internal/app"
	"inventapro/internal/config"
	"inventapro/internal/service"

	"github.com/spf13/cobra"
)

var errRowsFailed = errors.New("some rows were not imported")

type productsOptions struct {
	timeout time.Duration
	report  string
}

func newProductsCmd() *cobra.Command {
	var opts productsOptions
	cmd := &cobra.Command{
		Use:   "products <file.xlsx|file.csv>",
		Short: "Import products from a spreadsheet",
		Long: "Runs the product import against the configured database and blob store.\n" +
			"Exits with status 1 when any row failed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return withCode(exitUsage, err)
			}
			core, err := app.NewCore(cmd.Context(), cfg)
			if err != nil {
				return withCode(exitFailure, err)
			}
			defer core.Close()
			return runProducts(cmd, core.Imports, args[0], opts)
		},
	}
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Execution time limit (default IMPORT_TIMEOUT)")
	cmd.Flags().StringVar(&opts.report, "report", "", "Write failed rows to this CSV file")
	return cmd
}

func runProducts(cmd *cobra.Command, imports service.ProductImportService, path string, opts productsOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return withCode(exitUsage, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	reader, err := service.OpenImportFile(name, f)
	if err != nil {
		return withCode(exitUsage, err)
	}
	defer reader.Close()

	res, runErr := imports.Import(cmd.Context(), reader, service.ImportOptions{FileName: name, Timeout: opts.timeout})
	resp := service.ToImportResponse(res)
	printResult(cmd.OutOrStdout(), resp.Message, resp.Errors, res)

	if opts.report != "" && len(resp.Rows) > 0 {
		data, err := service.ErrorReportCSV(resp.Rows)
		if err == nil {
			err = os.WriteFile(opts.report, data, 0o644)
		}
		if err != nil {
			return withCode(exitFailure, fmt.Errorf("write report: %w", err))
		}
	}

	if runErr != nil {
		return withCode(exitFailure, runErr)
	}
	if !res.Succeeded() {
		return withCode(exitFailure, errRowsFailed)
	}
	return nil
}

func printResult(w io.Writer, message string, errs []string, res *service.ImportResult) {
	fmt.Fprintln(w, message)
	for _, e := range errs {
		fmt.Fprintln(w, "  "+e)
	}
	fmt.Fprintf(w, "%d rows, %d imported, %d failed in %s\n",
		res.TotalRows, res.Imported, res.Failed(), res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}
