package main

import "github.com/takecut/silencecutter/internal/cli"

func main() {
	cli.Main()
}
