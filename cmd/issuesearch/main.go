// Command issuesearch is a terminal issue search bar with recent searches
// and tag autocomplete, plus the HTTP API that backs it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
