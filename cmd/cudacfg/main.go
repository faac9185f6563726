package main

import "cudacfg/internal/cli"

func main() {
	cli.Execute()
}
