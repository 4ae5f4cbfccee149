package main

import "github.com/Homebrew/homebrew-brew-vulns/cmd"

func main() {
	cmd.Execute()
}
