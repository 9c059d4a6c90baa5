package main

import "audiochan/cmd"

func main() {
	cmd.Execute()
}
