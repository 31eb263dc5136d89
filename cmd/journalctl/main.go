package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultAPIFactory).Execute(); err != nil {
		os.Exit(1)
	}
}
