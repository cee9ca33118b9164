package main

import (
	"github.com/luma/m2handler/cmd"
)

func main() {
	cmd.Execute()
}
