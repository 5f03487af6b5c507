package main

import (
	"github.com/mj1618/stepwright/cmd"
	_ "github.com/mj1618/stepwright/internal/platform/chrome"
)

func main() {
	cmd.Execute()
}
