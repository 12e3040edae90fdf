package main

import "github.com/oshokin/cursor-flake-updater/cmd/cursor-updater/cmd"

func main() {
	cmd.Execute()
}
