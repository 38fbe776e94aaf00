// main is the entry point for the marshalgo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/growthlab/marshalgo/cmd"
	"github.com/growthlab/marshalgo/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	// Close stores explicitly since os.Exit skips deferred calls.
	iocache.CloseStores()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
