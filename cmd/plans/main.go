package main

import "github.com/mcoot/plans/internal/cli"

func main() {
	cli.Execute()
}
