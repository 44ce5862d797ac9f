package main

import "github.com/skeem-lang/skeem/cmd"

func main() {
	cmd.Execute()
}
