// Command h2report runs site analyses from the command line: it prints the
// text report, lists the selected sites, exports documents and checks a
// dataset file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
