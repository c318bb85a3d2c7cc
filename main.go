package main

import "github.com/omriShneor/donna/cmd"

func main() {
	cmd.Execute()
}
