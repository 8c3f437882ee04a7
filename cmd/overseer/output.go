package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nsyout/overseer/internal/contract"
)

// printResult marshals v as the success envelope and prints it to stdout
// (spec §6 "JSON envelope"). v may be nil (e.g. next_ready finding
// nothing), which marshals to the bare JSON null the spec names.
func printResult(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(b))
}

// fail prints err as the stable {"error": "<message>"} envelope (spec §6)
// and exits 1. The envelope itself is the command's JSON result on
// failure, so it goes to stdout like any success result; only the exit
// code distinguishes the two for a scripted caller.
func fail(err error) {
	b, mErr := json.MarshalIndent(contract.NewErrorEnvelope(err), "", "  ")
	if mErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(b))
	os.Exit(1)
}
