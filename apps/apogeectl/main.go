package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/apogeehq/apogee/apps/apogeectl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "apogeectl crashed: %v\n", r)
			if os.Getenv("APOGEE_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
