package main

import "github.com/mstanek/rollcall/cmd"

func main() {
	cmd.Execute()
}
