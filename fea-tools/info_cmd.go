package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/npillmayer/featools"
	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/featools/internal/fontload"
	"github.com/thatisuday/commando"
)

func runInfoCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	initTracing(flags)
	path := fontArg(args)
	var src feadecomp.TableSource
	var err error
	if strings.EqualFold(filepath.Ext(path), ".ttx") {
		fmt.Printf("TTX dump: %s\n", path)
		src, err = featools.Source(path)
	} else {
		var f *fontload.ScalableFont
		if f, err = fontload.Locate(path); err != nil {
			fatalf("cannot load %s: %v", path, err)
		}
		fmt.Printf("Path: %s\n", f.Filepath)
		if f.Fontname != "" {
			fmt.Printf("Name: %s\n", f.Fontname)
		}
		fmt.Printf("Glyphs: %d\n", f.NumGlyphs())
		tags := f.TableTags()
		fmt.Printf("Tables (%d): %s\n", len(tags), strings.Join(tags, " "))
		src, err = featools.FontTable(f)
	}
	if err != nil {
		fatalf("cannot read layout table: %v", err)
	}
	printLayout(src)
}

// printLayout lists the scripts and language systems of a layout table and
// the features they reference.
func printLayout(src feadecomp.TableSource) {
	fmt.Printf("Layout: %s\n", src.TableTag())
	var used []int
	for _, script := range src.ScriptRecords() {
		tag := fea.T(script.Tag)
		fmt.Printf("  script %-4s (%s)\n", tag.ScriptString(), tag.ScriptName())
		if script.DefaultFeatures != nil {
			fmt.Printf("    language dflt: %s\n", featureTags(src, script.DefaultFeatures))
			used = append(used, script.DefaultFeatures...)
		}
		for _, lang := range script.Languages {
			fmt.Printf("    language %-4s: %s\n", fea.Tag(lang.Tag).String(), featureTags(src, lang.Features))
			used = append(used, lang.Features...)
		}
	}
	slices.Sort(used)
	used = slices.Compact(used)
	fmt.Printf("Features (%d):\n", len(used))
	for _, inx := range used {
		f, err := src.FeatureRecord(inx)
		if err != nil {
			fmt.Printf("  %3d  error: %v\n", inx, err)
			continue
		}
		fmt.Printf("  %3d  %s  lookups %v\n", inx, f.Tag, f.Lookups)
	}
}

func featureTags(src feadecomp.TableSource, features []int) string {
	tags := make([]string, len(features))
	for i, inx := range features {
		if f, err := src.FeatureRecord(inx); err == nil {
			tags[i] = f.Tag
		} else {
			tags[i] = fmt.Sprintf("#%d?", inx)
		}
	}
	return strings.Join(tags, " ")
}
