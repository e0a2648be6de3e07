// File: cmd/snpublisher/main.go
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rodsoto/seminuevos-publisher/cmd"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
)

const panicLogFile = "panic.log"

// main is the entry point of the application.
func main() {
	defer handlePanic()
	cmd.Execute()
}

// handlePanic writes crash details to a dedicated file so a supervisor
// restart does not lose the stack trace.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}

	// Flush any buffered log entries before the process dies.
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := os.WriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "CRASH DETECTED. Details logged to %s\n", panicLogFile)
	os.Exit(1)
}
