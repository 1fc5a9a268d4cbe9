package main

import "github.com/anbu-systems/anbu-watch/cmd/anbu-watch/cmd"

func main() {
	cmd.Execute()
}
