package main

import "github.com/kozaktomas/staff-clock/cmd"

func main() {
	cmd.Execute()
}
