// main is the entry point for the devpulse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/devpulse/cmd"
	"github.com/huangsam/devpulse/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "⚠️ ", stopErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
