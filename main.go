package main

import "github.com/gaurav-prasanna/webshelf/cmd"

func main() {
	cmd.Execute()
}
