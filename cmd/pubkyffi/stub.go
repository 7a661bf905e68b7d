//go:build !cgo

package main

import (
	"fmt"
	"os"

	"github.com/pubky/pubky-ffi-go/pkg/bridge"
)

func main() {
	fmt.Fprintf(os.Stderr, "pubkyffi: %v\n", bridge.ErrNotBuilt)
	os.Exit(1)
}
