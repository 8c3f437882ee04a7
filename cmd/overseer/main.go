// Command overseer is a thin CLI dispatcher over the task and workflow
// services: each subcommand parses flags, calls exactly one service-layer
// operation, and prints the stable JSON contract (spec §1, §6). No
// human-readable renderer lives here — that belongs to the CLI
// presentation layer this repo is a collaborator for, not a replacement
// of.
package main

func main() {
	Execute()
}
