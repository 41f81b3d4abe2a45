package main

import (
	"os"

	"github.com/dontreeza/sangpragay-strapi/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
