package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/business-admin/importer"
	"github.com/warp/business-admin/store/sqlite"
)

func newImportCmd(g *globals) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import-employees FILE",
		Short: "Import employees from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			parsed, err := importer.Parse(args[0], f)
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			departments, err := store.ListDepartments(ctx)
			if err != nil {
				return err
			}
			existing, err := store.ListEmployees(ctx)
			if err != nil {
				return err
			}
			employees, rowErrs := importer.Resolve(parsed, departments, existing)
			for _, re := range rowErrs {
				logger.WithFields(logrus.Fields{"line": re.Line, "fields": re.Fields}).Warn(re.Message)
			}
			if !dryRun {
				if err := store.SaveEmployees(ctx, employees); err != nil {
					return err
				}
			}
			logger.WithFields(logrus.Fields{
				"file":     args[0],
				"total":    parsed.Total(),
				"imported": len(employees),
				"skipped":  len(rowErrs),
				"dry_run":  dryRun,
			}).Info("import finished")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without saving")
	return cmd
}

func newExportCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-employees",
		Short: "Export every employee to an XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			employees, err := store.ListEmployees(ctx)
			if err != nil {
				return err
			}
			departments, err := store.ListDepartments(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(departments))
			for _, d := range departments {
				names[d.ID] = d.Name
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := importer.ExportEmployees(f, employees, names); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"file": out, "employees": len(employees)}).Info("export finished")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "employees.xlsx", "Output file")
	return cmd
}
