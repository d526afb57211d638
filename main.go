package main

import "ragchat/cmd"

func main() {
	cmd.Execute()
}
