package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inventapro/internal/infra"
	"inventapro/internal/service"

	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <out.xlsx|out.csv>",
		Short: "Write an empty product import template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTemplate(args[0])
		},
	}
}

func writeTemplate(path string) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".csv" {
		return withCode(exitUsage, fmt.Errorf("template must be .xlsx or .csv, got %q", ext))
	}
	f, err := os.Create(path)
	if err != nil {
		return withCode(exitFailure, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = withCode(exitFailure, cerr)
		}
	}()

	if ext == ".csv" {
		err = infra.WriteCSVTemplate(f, service.ImportColumns)
	} else {
		err = infra.WriteXLSXTemplate(f, service.ImportColumns, service.ImportInstructions)
	}
	if err != nil {
		return withCode(exitFailure, err)
	}
	return nil
}
