// Command graphtool is a thin, out-of-core demo of the shapeql library
// surface: it loads an N-Quads dataset into the in-memory quad store and
// runs one of a handful of canned shape-tree scenarios against it.
package main

import (
	"fmt"
	"os"

	_ "github.com/cayleygraph/shapeql/clog/glog" // wires clog's log calls through golang/glog

	"github.com/cayleygraph/shapeql/cmd/graphtool/command"
)

func main() {
	if err := command.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
