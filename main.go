// ./main.go
package main

import (
	"github.com/rodsoto/seminuevos-publisher/cmd"
)

// main is the entry point for the snpublisher application.
func main() {
	cmd.Execute()
}
