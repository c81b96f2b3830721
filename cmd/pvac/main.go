// Command pvac is the portable vector assembly compiler's CLI entry
// point: `pvac <input> -o <output>`, mirroring the teacher's main.go
// flag-package surface (`-arch`, `-os`, `-target`, `-o`, `-v`) trimmed
// to the knobs this backend actually has — no OS selection, no
// subcommands, since there is nothing to link or run afterward.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zer0condition/pva-compiler/internal/compiler"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pvac", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	outputPath := fs.String("o", "", "output file path (required)")
	verbose := fs.Bool("v", false, "verbose mode (narrate each pipeline stage)")
	targetName := fs.String("target", "", "target override (x86-sse, x86-avx2, x86-avx512, arm-neon, arm-sve, riscv-rvv); default: probe the host")

	// flag stops at the first non-flag argument, so parsing resumes after
	// each positional one: flags may come before or after the input path.
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return 1
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pvac <input.pva> -o <output>")
		return 1
	}
	if *outputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pvac <input.pva> -o <output>")
		return 1
	}

	st := compiler.New(compiler.Options{
		SourcePath:     positional[0],
		OutputPath:     *outputPath,
		Verbose:        *verbose,
		TargetOverride: *targetName,
		Progress:       os.Stdout,
		Diagnostics:    os.Stderr,
	})

	if _, err := st.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pvac: %v\n", err)
		return 1
	}
	return 0
}
