package main

import (
	"os"

	"github.com/appsec-tools/scmsync/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
