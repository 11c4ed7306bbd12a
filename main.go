package main

import "github.com/diogopimentels/capicash/cmd"

func main() {
	cmd.Execute()
}
