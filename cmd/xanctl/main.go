package main

import "github.com/xandalyze/xandalyze/cmd/xanctl/cmd"

func main() {
	cmd.Execute()
}
