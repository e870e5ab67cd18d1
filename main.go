package main

import "github.com/jackchuka/depsweep/cmd"

func main() {
	cmd.Execute()
}
