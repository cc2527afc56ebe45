package main

import "github.com/Tiliavir/simple-timesheet/cmd"

func main() {
	cmd.Execute()
}
