package main

import "github.com/AmarBackInField/Legal-MultiAgent-Chatbot/cli"

func main() {
	cli.Execute()
}
