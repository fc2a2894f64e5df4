package main

import (
	"courier-tracking/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
