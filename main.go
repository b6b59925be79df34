package main

import "github.com/fakeyudi/ejtrace/cmd"

func main() {
	cmd.Execute()
}
