package main

import "github.com/gradescan/gradescan/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
