package main

import "github.com/JFsanchezherrero/PhiSpy/cmd"

func main() {
	cmd.Execute() // initialize cobra commands
}
