package main

import "github.com/Laisky/wordjobs/cmd"

func main() {
	cmd.Execute()
}
