package main

import "github.com/tayloree/dietcart/cmd"

func main() {
	cmd.Execute()
}
