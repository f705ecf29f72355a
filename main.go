package main

import "rims/cmd"

func main() {
	cmd.Execute()
}
