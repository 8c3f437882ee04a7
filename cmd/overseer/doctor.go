package main

import (
	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/vcs"
)

// doctorReport is the doctor command's JSON result: schema version and
// storage health (a ping plus a schema-version check) plus whether the
// detected VCS backend is reachable (SPEC_FULL.md section C).
type doctorReport struct {
	SchemaVersion int      `json:"schemaVersion"`
	DBPath        string   `json:"dbPath"`
	RepoRoot      string   `json:"repoRoot"`
	VCSKind       string   `json:"vcsKind"`
	StorageOK     bool     `json:"storageOk"`
	VCSReachable  bool     `json:"vcsReachable"`
	Warnings      []string `json:"warnings,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "admin",
	Short:   "Report schema version, storage health, and VCS backend reachability",
	Run: func(cmd *cobra.Command, args []string) {
		var warnings []string

		report := doctorReport{DBPath: cfg.DBPath, RepoRoot: cfg.RepoRoot, VCSKind: string(cfg.VCSKind)}

		if err := store.Probe(rootCtx); err != nil {
			warnings = append(warnings, "storage: "+err.Error())
		} else {
			report.StorageOK = true
		}
		if v, err := store.SchemaVersion(rootCtx); err == nil {
			report.SchemaVersion = v
		} else {
			warnings = append(warnings, "schema version: "+err.Error())
		}

		if cfg.VCSKind == vcs.KindJJ {
			if _, err := vcs.NewJJ(cfg.RepoRoot).Status(rootCtx); err != nil {
				warnings = append(warnings, "vcs: "+err.Error())
			} else {
				report.VCSReachable = true
			}
		} else {
			warnings = append(warnings, "vcs: detected backend "+string(cfg.VCSKind)+" has no overseer workflow support (jj only)")
		}

		report.Warnings = warnings
		printResult(report)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
