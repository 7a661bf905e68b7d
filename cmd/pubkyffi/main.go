//go:build cgo

package main

/*
#cgo CFLAGS: -I${SRCDIR}
*/
import "C"

func main() {}
