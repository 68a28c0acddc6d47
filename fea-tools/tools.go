package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
)

// tracer traces with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}

func main() {
	commando.
		SetExecutableName("fea-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for recovering OpenType feature definitions from GSUB tables.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("decompile").
		SetDescription("Decompile the GSUB table of a font file or TTX dump to feature file syntax.").
		SetShortDescription("write feature syntax").
		AddArgument("font", "font file path, TTX dump or installed font name", "").
		AddFlag("output,o", "output file ('-' for stdout)", commando.String, "-").
		AddFlag("indent,i", "indentation: 'tab' or a number of spaces", commando.String, "tab").
		AddFlag("unfiltered,u", "keep redundant script, language and lookupflag statements", commando.Bool, nil).
		AddFlag("raw,r", "do not recover shared lookups and classes", commando.Bool, nil).
		AddFlag("exclude,x", "feature tags to skip (e.g. aalt,salt)", commando.String, "-").
		AddFlag("trace,T", "trace level: Debug|Info|Error", commando.String, "Error").
		SetAction(runDecompileCommand)

	commando.
		Register("dump").
		SetDescription("Print a structured dump of the decompiled GSUB table.").
		SetShortDescription("structured dump").
		AddArgument("font", "font file path, TTX dump or installed font name", "").
		AddFlag("raw,r", "do not recover shared lookups and classes", commando.Bool, nil).
		AddFlag("exclude,x", "feature tags to skip (e.g. aalt,salt)", commando.String, "-").
		AddFlag("trace,T", "trace level: Debug|Info|Error", commando.String, "Error").
		SetAction(runDumpCommand)

	commando.
		Register("info").
		SetDescription("Print font tables and the script, language and feature lists of GSUB.").
		SetShortDescription("layout overview").
		AddArgument("font", "font file path, TTX dump or installed font name", "").
		AddFlag("trace,T", "trace level: Debug|Info|Error", commando.String, "Error").
		SetAction(runInfoCommand)

	commando.Parse(nil)
}

// initTracing routes tracing output to the Go logger.
func initTracing(flags map[string]commando.FlagValue) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.font.fea":  "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	level := mustFlagString(flags["trace"], "trace")
	switch level {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		fatalf("invalid trace level: %s", level)
	}
}

func fontArg(args map[string]commando.ArgValue) string {
	path := strings.TrimSpace(args["font"].Value)
	if path == "" {
		fatalf("font path is required")
	}
	return path
}

// decompileOptions collects the decompiler options of flags --raw and
// --exclude.
func decompileOptions(flags map[string]commando.FlagValue) []feadecomp.Option {
	var opts []feadecomp.Option
	if mustFlagBool(flags["raw"], "raw") {
		opts = append(opts, feadecomp.Raw())
	}
	if exclude := mustFlagString(flags["exclude"], "exclude"); exclude != "-" {
		if tags := splitCSVSpace(exclude); len(tags) > 0 {
			opts = append(opts, feadecomp.ExcludeFeatures(tags...))
		}
	}
	return opts
}

// indentation interprets flag --indent.
func indentation(flag commando.FlagValue) string {
	s := strings.TrimSpace(mustFlagString(flag, "indent"))
	if s == "" || s == "tab" {
		return "\t"
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		fatalf("invalid --indent flag: %q", s)
	}
	return strings.Repeat(" ", n)
}

func splitCSVSpace(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "fea-tools: "+format+"\n", args...)
	os.Exit(1)
}
