package main

import "vidai-studio/cmd"

func main() {
	cmd.Execute()
}
