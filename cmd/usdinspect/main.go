// Command usdinspect opens USD scene files and dumps their layer metadata
// and prim hierarchy, including resolved instance proxies. It is a
// debugging companion to usdcheck: when a validation fails, the outline
// shows what the engine actually saw.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vk/usdcheck/internal/usd"
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `
usdinspect - Dump the structure of USD scene files.

Usage:
  usdinspect FILE...
`)
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	code := 0
	for _, path := range flag.Args() {
		if err := inspect(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			code = 1
		}
	}
	os.Exit(code)
}

func inspect(path string) error {
	stage, err := usd.Open(path)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s\n", path)
	if stage.DefaultPrim() != "" {
		fmt.Printf("defaultPrim: %q\n", stage.DefaultPrim())
	}
	if stage.UpAxis() != "" {
		fmt.Printf("upAxis: %s\n", stage.UpAxis())
	}
	fmt.Printf("metersPerUnit: %g\n", stage.MetersPerUnit())
	if pkg := stage.UsdzPackage(); pkg != nil {
		fmt.Printf("package entries (%d):\n", len(pkg.Entries))
		for _, e := range pkg.Entries {
			note := ""
			if e.Name == pkg.DefaultLayer {
				note = " (default layer)"
			}
			fmt.Printf("  %s  offset=%d size=%d%s\n", e.Name, e.Offset, e.Size, note)
		}
	}
	fmt.Println()
	stage.WriteOutline(os.Stdout)
	return nil
}
