package main

import "github.com/jensroland/git-ai/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
