// Package main provides the CLI entrypoint for xmsync.
//
// xmsync turns tabular exports into sync plans: per entity, a record array
// and the sync options that tell the sync executor which fields it manages.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/xmsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
