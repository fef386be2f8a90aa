package main

import "github.com/frahmantamala/identity-api/cmd"

func main() {
	cmd.Execute()
}
