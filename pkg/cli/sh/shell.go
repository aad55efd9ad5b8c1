// Package sh provides an interactive shell emulating a device under
// test, for exercising host harnesses without hardware.
package sh

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cino.go/pkg/cino/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

const (
	shellKey = "$shell"
	prompt   = "cino > "
	halted   = "[halted] > "
)

var (
	evalOnly bool

	commands = []*ishell.Cmd{
		&PlanCmd,
		&NoPlanCmd,
		&AtCmd,
		&CheckCmd,
		&RequireCmd,
		&DoneCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell.
func New(conf *env.Config) (*Shell, error) {
	r, err := conf.NewReporter()
	if err != nil {
		return nil, err
	}
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Config:      conf,
		Session:     NewSession(r),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// sessionCmd wraps a command func operating on the session.
func sessionCmd(fn func(s *Session, args []string) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if err := fn(s.Session, c.Args); err != nil {
			c.Err(err)
		}
		if s.Session.Halted() {
			s.Shell.SetPrompt(halted)
		}
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PlanCmd announces a plan.
	PlanCmd = ishell.Cmd{
		Name: "plan",
		Help: "N",
		Func: sessionCmd(func(s *Session, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expect: plan N")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan count %q", args[0])
			}
			return s.Plan(n)
		}),
	}

	// NoPlanCmd announces no plan.
	NoPlanCmd = ishell.Cmd{
		Name: "noplan",
		Help: "",
		Func: sessionCmd(func(s *Session, args []string) error {
			return s.Plan(-1)
		}),
	}

	// AtCmd sets the reported source location.
	AtCmd = ishell.Cmd{
		Name: "at",
		Help: "FILE[:LINE]",
		Func: sessionCmd(func(s *Session, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expect: at FILE[:LINE]")
			}
			return s.At(args[0])
		}),
	}

	// CheckCmd emits a soft check.
	CheckCmd = ishell.Cmd{
		Name:    "check",
		Aliases: []string{"c"},
		Help:    "pass|fail EXPR",
		Func: sessionCmd(func(s *Session, args []string) error {
			return s.CheckArgs(args, false)
		}),
	}

	// RequireCmd emits a fatal check.
	RequireCmd = ishell.Cmd{
		Name:    "require",
		Aliases: []string{"r"},
		Help:    "pass|fail EXPR",
		Func: sessionCmd(func(s *Session, args []string) error {
			return s.CheckArgs(args, true)
		}),
	}

	// DoneCmd announces the end of the run.
	DoneCmd = ishell.Cmd{
		Name: "done",
		Help: "",
		Func: sessionCmd(func(s *Session, args []string) error {
			return s.Done()
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := New(env.NewConfig())
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
