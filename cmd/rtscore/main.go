package main

import "github.com/mcoot/reflextile/internal/cli"

func main() {
	cli.Execute()
}
