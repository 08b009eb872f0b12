// Package main is the entry point for the mkvmerge core CLI.
package main

import (
	"os"

	"github.com/acdvorak/mkvtoolnix/cmd/mkvmerge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
