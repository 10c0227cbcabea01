package main

import "navindex/cmd/navindex-cli/cmd"

func main() {
	cmd.Execute()
}
