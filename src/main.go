package main

import (
	"github.com/ProjectsTask/EasySwapListing/src/cmd"
)

// go run ./src daemon
func main() {
	cmd.Execute()
}
