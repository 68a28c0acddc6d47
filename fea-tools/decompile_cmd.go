package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/npillmayer/featools"
	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/featools/feawrite"
	"github.com/thatisuday/commando"
)

func runDecompileCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	initTracing(flags)
	path := fontArg(args)
	table := mustDecompile(path, flags)
	w := feawrite.New(
		feawrite.Whitespace(indentation(flags["indent"])),
		feawrite.FilterRedundancies(!mustFlagBool(flags["unfiltered"], "unfiltered")),
	)
	outPath := mustFlagString(flags["output"], "output")
	if outPath == "-" || outPath == "" {
		if err := w.Write(os.Stdout, table); err != nil {
			fatalf("%v", err)
		}
		return
	}
	f, err := os.Create(outPath)
	if err != nil {
		fatalf("cannot create %s: %v", outPath, err)
	}
	out := bufio.NewWriter(f)
	if err = w.Write(out, table); err == nil {
		err = out.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fatalf("cannot write %s: %v", outPath, err)
	}
	fmt.Printf("wrote %s (%d features, %d global lookups)\n", outPath, len(table.Features), len(table.Lookups))
}

func runDumpCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	initTracing(flags)
	table := mustDecompile(fontArg(args), flags)
	dump, err := feawrite.Dump(table)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(dump)
}

func mustDecompile(path string, flags map[string]commando.FlagValue) *fea.Table {
	src, err := featools.Source(path)
	if err != nil {
		fatalf("cannot open %s: %v", path, err)
	}
	table, err := feadecomp.Decompile(src, decompileOptions(flags)...)
	if err != nil {
		fatalf("cannot decompile %s table of %s: %v", src.TableTag(), path, err)
	}
	return table
}
