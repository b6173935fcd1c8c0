package main

import "github.com/djcass44/all-your-arch/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
