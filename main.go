package main

import "github.com/reef-sh/reef/cmd"

func main() {
	cmd.Execute()
}
