package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/exportimport"
	"github.com/nsyout/overseer/internal/types"
)

var (
	exportOut string
	importIn  string
)

var dataCmd = &cobra.Command{
	Use:     "data",
	GroupID: "data",
	Short:   "Export and import the full task graph",
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a full-graph JSONL snapshot (tasks, learnings, blocker edges)",
	Run: func(cmd *cobra.Command, args []string) {
		w := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fail(types.Errorf(types.KindStoreError, err, "create export file %s", exportOut))
			}
			defer f.Close()
			if err := exportimport.Export(rootCtx, store, f); err != nil {
				fail(err)
			}
			printResult(map[string]string{"exported": exportOut})
			return
		}
		if err := exportimport.Export(rootCtx, store, w); err != nil {
			fail(err)
		}
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replay a JSONL snapshot into the current database (all-or-nothing)",
	Run: func(cmd *cobra.Command, args []string) {
		r := os.Stdin
		if importIn != "" {
			f, err := os.Open(importIn)
			if err != nil {
				fail(types.Errorf(types.KindStoreError, err, "open import file %s", importIn))
			}
			defer f.Close()
			r = f
		}
		result, err := exportimport.Import(rootCtx, store, r)
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

func init() {
	dataExportCmd.Flags().StringVar(&exportOut, "out", "", "Write to this file instead of stdout")
	dataImportCmd.Flags().StringVar(&importIn, "in", "", "Read from this file instead of stdin")

	dataCmd.AddCommand(dataExportCmd, dataImportCmd)
	rootCmd.AddCommand(dataCmd)
}
