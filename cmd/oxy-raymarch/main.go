package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-raymarch/cmd"
)

// GLFW must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
