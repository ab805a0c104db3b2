package main

import "github.com/taskglass/taskglass/cmd"

func main() {
	cmd.Execute()
}
