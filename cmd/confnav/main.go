// Package main is the entry point for confnav, a terminal browser for
// configuration stores.
//
// confnav lists the namespaces of a configuration service, the groups of a
// namespace and the entries of a group page by page, and opens entries in a
// modal to view, edit or create them. The same operations are available as
// subcommands for scripting.
//
// Usage:
//
//	confnav [flags]
//	confnav [command]
//
// Run confnav --help for the list of commands and flags.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	if err := newCLI().root().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
