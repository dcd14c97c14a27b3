package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/tonhe/hometray/cmd"
)

func init() {
	// The tray toolkit must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
