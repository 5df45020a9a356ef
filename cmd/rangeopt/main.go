// Package main provides the rangeopt command: it lowers programs with the
// range-loop specializations, explains the loop decisions, runs the result
// and serves the explorer API.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/rangeopt/internal/build"
	"github.com/orizon-lang/rangeopt/internal/cli"
	"github.com/orizon-lang/rangeopt/internal/codegen"
	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/explorer"
	"github.com/orizon-lang/rangeopt/internal/mir/interp"
	"github.com/orizon-lang/rangeopt/internal/position"
	"github.com/orizon-lang/rangeopt/internal/term"
	"github.com/orizon-lang/rangeopt/internal/watch"
)

const tool = "rangeopt"

var commands = []cli.CommandInfo{
	{
		Name:        "lower",
		Usage:       "rangeopt lower [-emit mir|lir|asm|none] [-explain [-source]] [-j N] FILE...",
		Description: "Lower source files and print the MIR, LIR or x86-64 listing",
		Examples:    []string{"rangeopt lower -emit asm main.kt", "rangeopt -no-specialize lower main.kt"},
	},
	{
		Name:        "explain",
		Usage:       "rangeopt explain [-source] FILE...",
		Description: "Print the strategy chosen for every for-loop",
	},
	{
		Name:        "run",
		Usage:       "rangeopt run [-fn NAME] [-timeout D] FILE [ARGS...]",
		Description: "Lower a file and interpret one of its functions",
		Examples:    []string{"rangeopt run main.kt", "rangeopt run -fn sum main.kt 10"},
	},
	{
		Name:        "watch",
		Usage:       "rangeopt watch [-fn NAME] FILE",
		Description: "Re-run a file whenever it changes",
	},
	{
		Name:        "serve",
		Usage:       "rangeopt serve [-listen ADDR] [-cert FILE -key FILE]",
		Description: "Serve the explorer API over HTTP/3",
	},
	{
		Name:        "version",
		Usage:       "rangeopt version [--json]",
		Description: "Print version information",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the resolved configuration of one invocation.
type app struct {
	cfg    *cli.Config
	opts   codegen.Options
	log    *cli.Logger
	cache  *build.Cache
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(tool, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintUsage(stderr, tool, commands) }

	configPath := fs.String("config", "", "configuration file")
	verbose := fs.Bool("verbose", false, "log progress")
	debug := fs.Bool("debug", false, "log every loop decision")
	lang := fs.String("lang", "", "language version")
	noSpecialize := fs.Bool("no-specialize", false, "lower every loop through a runtime progression")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg.ApplyEnv()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose":
			cfg.Verbose = *verbose
		case "debug":
			cfg.Debug = *debug
		case "lang":
			cfg.LanguageVersion = *lang
		case "no-specialize":
			cfg.Specialize = !*noSpecialize
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	opts, err := cfg.CodegenOptions()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)
	if f, ok := stderr.(*os.File); ok {
		log.Color = term.ColorEnabled(f)
	}

	a := &app{cfg: cfg, opts: opts, log: log, cache: build.NewCache(0), stdout: stdout}
	sub, subArgs := rest[0], rest[1:]

	switch sub {
	case "help", "-h", "--help":
		cli.PrintUsage(stdout, tool, commands)
		return 0
	case "version", "-v", "--version":
		err = a.version(subArgs)
	case "lower":
		err = a.lower(ctx, subArgs, false)
	case "explain":
		err = a.lower(ctx, append([]string{"-emit", "none", "-explain"}, subArgs...), true)
	case "run":
		err = a.run(ctx, subArgs)
	case "watch":
		err = a.watch(ctx, subArgs)
	case "serve":
		err = a.serve(ctx, subArgs)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", sub)
		cli.PrintUsage(stderr, tool, commands)
		return 2
	}

	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		log.Error("%v", err)
		return 1
	}
	return 0
}

func (a *app) subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.log.Writer())
	for _, c := range commands {
		if c.Name == name {
			cmd := c
			fs.Usage = func() { cli.PrintCommandUsage(a.log.Writer(), tool, cmd) }
		}
	}
	return fs
}

func (a *app) version(args []string) error {
	fs := a.subFlags("version")
	jsonOut := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	info := cli.GetVersionInfo()
	info.LanguageVersion = a.cfg.LanguageVersion
	set, err := a.cfg.Features()
	if err != nil {
		return err
	}
	for _, f := range set.List() {
		info.Features = append(info.Features, string(f))
	}
	return cli.PrintVersion(a.stdout, tool, info, *jsonOut)
}

func (a *app) compileFile(path string) (*build.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := a.cache.Compile(path, string(src), a.opts)
	if err != nil {
		return nil, err
	}
	for _, d := range u.Report.Decisions {
		a.log.Debug("%s", d)
	}
	return u, nil
}

// lower compiles files concurrently and prints the results in argument order.
func (a *app) lower(ctx context.Context, args []string, explainOnly bool) error {
	name := "lower"
	if explainOnly {
		name = "explain"
	}
	fs := a.subFlags(name)
	emit := fs.String("emit", "mir", "output: mir, lir, asm or none")
	explain := fs.Bool("explain", false, "print loop decisions")
	source := fs.Bool("source", false, "show the source line of every loop decision")
	jobs := fs.Int("j", runtime.NumCPU(), "parallel compilations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if err := cli.ValidateArgs(files, 1, commands[0].Usage); err != nil {
		return err
	}
	switch *emit {
	case "mir", "lir", "asm", "none":
	default:
		return fmt.Errorf("unknown -emit %q", *emit)
	}

	units := make([]*build.Unit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := a.compileFile(path)
			if err != nil {
				return err
			}
			units[i] = u
			a.log.Info("lowered %s: %d loops", path, len(u.Report.Decisions))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if *source {
			a.showSource(err)
		}
		return err
	}

	for _, u := range units {
		switch *emit {
		case "mir":
			fmt.Fprint(a.stdout, u.MIR.String())
		case "lir":
			fmt.Fprint(a.stdout, u.LIR().String())
		case "asm":
			fmt.Fprint(a.stdout, codegen.EmitX64(u.LIR()))
		}
		if !*explain {
			continue
		}
		if !*source {
			fmt.Fprint(a.stdout, u.Report.String())
			continue
		}
		sh := position.NewSpanHighlighter(position.NewSourceFile(u.Filename, u.Source))
		for _, d := range u.Report.Decisions {
			fmt.Fprintln(a.stdout, d)
			fmt.Fprint(a.stdout, sh.HighlightFirstLine(d.Span))
		}
	}
	return nil
}

// showSource prints every positioned diagnostic in err with its source line.
func (a *app) showSource(err error) {
	var list build.ErrorList
	if !stderrors.As(err, &list) {
		return
	}
	files := make(map[string]*position.SourceFile)
	for _, e := range list {
		var se *errors.StandardError
		if !stderrors.As(e, &se) {
			continue
		}
		pos, ok := se.Pos.(position.Position)
		if !ok {
			continue
		}
		sf, ok := files[pos.Filename]
		if !ok {
			src, rerr := os.ReadFile(pos.Filename)
			if rerr != nil {
				continue
			}
			sf = position.NewSourceFile(pos.Filename, string(src))
			files[pos.Filename] = sf
		}
		fmt.Fprintln(a.stdout, se.Message)
		fmt.Fprint(a.stdout, sf.Snippet(pos))
	}
}

// refresh compiles path and evicts the unit of its previous contents.
func (a *app) refresh(path string, prev *build.CacheKey) (*build.Unit, error) {
	u, err := a.compileFile(path)
	if err != nil {
		return nil, err
	}
	key := build.KeyFor(u.Filename, u.Source, a.opts)
	if *prev != "" && *prev != key {
		a.cache.Invalidate(*prev)
	}
	*prev = key
	return u, nil
}

func (a *app) runFile(ctx context.Context, path, fn string, args []int64) error {
	u, err := a.compileFile(path)
	if err != nil {
		return err
	}

	res, err := interp.Run(ctx, u.MIR, fn, args, interp.Options{MaxSteps: a.cfg.MaxSteps, Stdout: a.stdout})
	if res != nil {
		for _, v := range res.Trace {
			fmt.Fprintln(a.stdout, v)
		}
		if res.Return != nil {
			fmt.Fprintf(a.stdout, "=> %d\n", *res.Return)
		}
		a.log.Info("%s: %d steps", path, res.Steps)
	}
	return err
}

func parseArgs(raw []string) ([]int64, error) {
	args := make([]int64, 0, len(raw))
	for _, s := range raw {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", s, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := a.subFlags("run")
	fn := fs.String("fn", "main", "function to call")
	timeout := fs.Duration("timeout", 0, "optional timeout (e.g., 30s)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if err := cli.ValidateArgs(rest, 1, commands[2].Usage); err != nil {
		return err
	}
	callArgs, err := parseArgs(rest[1:])
	if err != nil {
		return err
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	return a.runFile(ctx, rest[0], *fn, callArgs)
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.subFlags("watch")
	fn := fs.String("fn", "main", "function to call")
	delay := fs.Duration("delay", watch.DefaultDelay, "quiet period before re-running")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if err := cli.ValidateArgs(rest, 1, commands[3].Usage); err != nil {
		return err
	}
	path := rest[0]
	callArgs, err := parseArgs(rest[1:])
	if err != nil {
		return err
	}

	var last build.CacheKey
	rerun := func(string) {
		fmt.Fprintf(a.stdout, "--- %s %s\n", path, time.Now().Format("15:04:05"))
		u, err := a.refresh(path, &last)
		if err != nil {
			a.log.Error("%v", err)
			return
		}
		fmt.Fprint(a.stdout, u.Report.String())
		if err := a.runFile(ctx, path, *fn, callArgs); err != nil {
			a.log.Error("%v", err)
		}
	}
	rerun(path)
	a.log.Info("watching %s", path)
	return watch.Run(ctx, []string{path}, *delay, rerun)
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.subFlags("serve")
	listen := fs.String("listen", a.cfg.Listen, "UDP address to listen on")
	cert := fs.String("cert", a.cfg.CertFile, "TLS certificate")
	key := fs.String("key", a.cfg.KeyFile, "TLS key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tlsCfg, err := explorer.LoadTLSConfig(*cert, *key)
	if err != nil {
		return err
	}
	h := explorer.NewHandler(a.cache, a.log, a.opts, a.cfg.MaxSteps)
	s := explorer.NewServer(*listen, tlsCfg, h)
	addr, err := s.Start()
	if err != nil {
		return err
	}
	defer s.Stop()

	fmt.Fprintf(a.stdout, "explorer listening on https://%s (HTTP/3)\n", addr)
	<-ctx.Done()
	a.log.Info("shutting down")
	return nil
}
