package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/featools"
	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.font.fea":  "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file, TTX dump or installed font to load")
	raw := flag.Bool("raw", false, "Do not recover shared lookups and classes")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the GSUB feature explorer")
	//
	// set up REPL
	repl, err := readline.New("fea > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname, *raw); err != nil { // font name provided by flag
		tracer().Errorf("%v", err)
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	path    string
	repl    *readline.Instance
	table   *fea.Table
	feature *fea.Feature // selected feature, or nil for table level
}

func (intp *Intp) String() string {
	if intp == nil || intp.table == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( table=%s )", intp.table.Tag))
	if intp.feature != nil {
		sb.WriteString(fmt.Sprintf(" -> feature %s", intp.feature.Tag))
	}
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-codes QUIT and UP will not have arguments
	QUIT int = iota
	UP
	// op-codes below may have arguments
	HELP
	FEATURES
	FEATURE
	SCRIPTS
	LOOKUPS
	LOOKUP
	CLASSES
	CLASS
	FEA
	DUMP
)

var opMap = map[string]int{
	"quit":     QUIT,
	"up":       UP,
	"..":       UP,
	"help":     HELP,
	"features": FEATURES,
	"feature":  FEATURE,
	"scripts":  SCRIPTS,
	"lookups":  LOOKUPS,
	"lookup":   LOOKUP,
	"classes":  CLASSES,
	"class":    CLASS,
	"fea":      FEA,
	"dump":     DUMP,
}

var opNames = []string{
	"quit",
	"up",
	"help",
	"features",
	"feature",
	"scripts",
	"lookups",
	"lookup",
	"classes",
	"class",
	"fea",
	"dump",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
	}
}

// parseCommand splits a line into steps, e.g. "feature:liga lookups".
// Each step is an op-code with an optional argument, separated by a colon.
func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many steps in command: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.SplitN(step, ":", 2) // e.g.  "feature:liga" or "lookup:liga_1" or "help:lookups"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code <= UP {
			continue
		}
		command.op[i].arg = getOptArg(c, 1)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	UP:       upOp,
	HELP:     helpOp,
	FEATURES: featuresOp,
	FEATURE:  featureOp,
	SCRIPTS:  scriptsOp,
	LOOKUPS:  lookupsOp,
	LOOKUP:   lookupOp,
	CLASSES:  classesOp,
	CLASS:    classOp,
	FEA:      feaOp,
	DUMP:     dumpOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

func upOp(intp *Intp, op *Op) (error, bool) {
	if intp.feature == nil {
		tracer().Infof("ignoring 'up' at table level")
	}
	intp.feature = nil
	return nil, false
}

func featureOp(intp *Intp, op *Op) (error, bool) {
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("feature tag missing, e.g. feature:liga"), false
	}
	f := intp.table.Feature(fea.T(tag))
	if f == nil {
		return fmt.Errorf("no feature %q in table", tag), false
	}
	intp.feature = f
	tracer().Infof("selected feature %s", tag)
	return nil, false
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, raw bool) (err error) {
	if fontname == "" {
		return errors.New("no font given, use flag -font")
	}
	var opts []feadecomp.Option
	if raw {
		opts = append(opts, feadecomp.Raw())
	}
	if intp.table, err = featools.DecompileFont(fontname, opts...); err != nil {
		tracer().Errorf("cannot decompile %s: %v", fontname, err)
		return err
	}
	intp.path = fontname
	pterm.Printf("%s: %d features, %d global lookups\n",
		fontname, len(intp.table.Features), len(intp.table.Lookups))
	return nil
}

// ----------------------------------------------------------------------

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
