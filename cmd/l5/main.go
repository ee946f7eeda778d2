package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/diag"
	"github.com/smasher164/l5/parser"
	"github.com/smasher164/l5/types"
)

const (
	appName    = "l5"
	Version    = "0.1.0"
	promptMain = "l5> "
	promptCont = "... "
)

const helpText = `REPL commands:
  :env     Show the top-level bindings
  :help    Show this message
  :quit    Exit the REPL
`

func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	log.SetFlags(0)
	log.SetPrefix(appName + ": ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch cmd := os.Args[1]; cmd {
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "type":
		os.Exit(cmdType(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(Version)
	case "-h", "--help", "help":
		usage()
	default:
		log.Printf("unknown command %q", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`L5 type checker %s

Usage:
  %s check [-config file] [-trace] [-dump] [-color] [path ...]   Type check files or directories (default ".")
  %s type [-config file] [-trace] [-program] [source]           Print the type of an expression (stdin if omitted)
  %s repl [-config file]                                        Start the REPL
  %s version                                                    Print the version

`, Version, appName, appName, appName, appName)
}

type commonFlags struct {
	fs     *flag.FlagSet
	config *string
	trace  *bool
	dump   *bool
	color  *bool
}

func newFlagSet(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &commonFlags{
		fs:     fs,
		config: fs.String("config", "", "config file (default "+defaultConfigFile+" if present)"),
		trace:  fs.Bool("trace", false, "print every typing judgment to stderr"),
		dump:   fs.Bool("dump", false, "print the syntax tree of every program"),
		color:  fs.Bool("color", false, "highlight diagnostics"),
	}
}

// load reads the config file and applies the flags that were set
// explicitly on top of it.
func (f *commonFlags) load() (*Config, error) {
	var cfg *Config
	var err error
	if *f.config != "" {
		dir, name := filepath.Split(*f.config)
		if dir == "" {
			dir = "."
		}
		cfg, err = LoadConfig(os.DirFS(dir), name, false)
	} else {
		cfg, err = LoadConfig(os.DirFS("."), defaultConfigFile, true)
	}
	if err != nil {
		return nil, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "trace":
			cfg.Trace = *f.trace
		case "dump":
			cfg.Dump = *f.dump
		case "color":
			cfg.Color = *f.color
		}
	})
	return cfg, nil
}

func newChecker(cfg *Config) *types.Checker {
	c := &types.Checker{}
	if cfg.Trace {
		c.Trace = os.Stderr
	}
	return c
}

// loadPath loads a file or directory. Names of the returned files are
// relative to the returned directory.
func loadPath(p string) ([]*parser.File, string, error) {
	dir, name := filepath.Split(filepath.Clean(p))
	if dir == "" {
		dir = "."
	}
	files, err := parser.NewLoader(os.DirFS(dir)).Load(name)
	return files, dir, err
}

func cmdCheck(args []string) int {
	f := newFlagSet("check")
	if err := f.fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := f.load()
	if err != nil {
		log.Print(err)
		return 1
	}
	paths := f.fs.Args()
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	status := 0
	for _, p := range paths {
		files, dir, err := loadPath(p)
		for _, file := range files {
			name := filepath.Join(dir, file.Name)
			if file.Program == nil {
				continue
			}
			if cfg.Dump {
				ast.PrintAST(file.Program)
			}
			t, err := newChecker(cfg).CheckProgram(file.Program)
			if err != nil {
				fmt.Fprintln(os.Stderr, diag.Snippet(err, name, file.Source, cfg.Color))
				status = 1
				continue
			}
			fmt.Printf("%s: %s\n", name, t)
		}
		if err != nil {
			if len(files) > 0 && files[len(files)-1].Program == nil {
				last := files[len(files)-1]
				fmt.Fprintln(os.Stderr, diag.Snippet(err, filepath.Join(dir, last.Name), last.Source, cfg.Color))
			} else {
				log.Print(err)
			}
			status = 1
		}
	}
	return status
}

func cmdType(args []string) int {
	f := newFlagSet("type")
	program := f.fs.Bool("program", false, "treat the source as a whole program")
	if err := f.fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := f.load()
	if err != nil {
		log.Print(err)
		return 1
	}
	src := strings.Join(f.fs.Args(), " ")
	if src == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Print(err)
			return 1
		}
		src = string(data)
		*program = true
	}

	var t ast.Type
	if *program {
		var prog *ast.Program
		if prog, err = parser.ParseProgramString(src); err == nil {
			if cfg.Dump {
				ast.PrintAST(prog)
			}
			t, err = newChecker(cfg).CheckProgram(prog)
		}
	} else {
		var n ast.Node
		if n, err = parser.ParseExp(src); err == nil {
			if cfg.Dump {
				ast.PrintAST(n)
			}
			t, err = newChecker(cfg).CheckExpression(n)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, diag.Snippet(err, "", src, cfg.Color))
		return 1
	}
	fmt.Println(t)
	return 0
}

func cmdRepl(args []string) int {
	f := newFlagSet("repl")
	if err := f.fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := f.load()
	if err != nil {
		log.Print(err)
		return 1
	}
	fmt.Printf("L5 %s\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", Version)

	histPath := cfg.History
	if !filepath.IsAbs(histPath) {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, histPath)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hf, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(hf)
		_ = hf.Close()
	}
	defer func() {
		if hf, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(hf)
			_ = hf.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	session := types.NewSession()
	session.Checker = *newChecker(cfg)
	for {
		src, ok := readUntilComplete(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ":"):
			switch trimmed {
			case ":quit":
				return 0
			case ":env":
				fmt.Print(session.Env())
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		prog, err := parser.ParseProgramString(src)
		if err == nil {
			if cfg.Dump {
				ast.PrintAST(prog)
			}
			var t ast.Type
			if t, err = session.Check(prog); err == nil {
				if cfg.Color {
					fmt.Println(green(t.String()))
				} else {
					fmt.Println(t)
				}
				continue
			}
		}
		fmt.Fprintln(os.Stderr, diag.Snippet(err, "", src, cfg.Color))
	}
}

// readUntilComplete keeps prompting until the accumulated input is either
// a complete program or a syntax error that more input cannot fix.
func readUntilComplete(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.ParseProgramString(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
