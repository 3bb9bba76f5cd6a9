package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/go-dsh/dsh/internal/session"
	"github.com/go-dsh/dsh/internal/ui"
)

// Shell is the local interactive shell loop (spec §4.7), driven by
// chzyer/readline exactly as the teacher's REPL is.
type Shell struct {
	Session *session.Session
	RL      *readline.Instance
}

// New creates a local Shell. History is intentionally not persisted
// to disk (history is a named Non-goal); readline is used purely for
// line editing and EOF detection.
func New(sess *session.Session) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.RenderPrompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Shell{Session: sess, RL: rl}, nil
}

// Run executes the read-parse-execute loop until EOF or a built-in
// exit, returning the process exit code (spec §4.7, §6).
func (sh *Shell) Run() int {
	defer sh.RL.Close()

	for {
		line, err := sh.RL.Readline()
		if err != nil { // io.EOF (Ctrl-D) or interrupt
			return 0
		}

		status, exit := sh.runLine(line, os.Stdin, os.Stdout, os.Stderr)
		if exit {
			if status.Kind == StatusError {
				return status.Code
			}
			return 0
		}
	}
}

// runLine normalizes, parses, and executes a single command line
// against the given I/O triple. It is shared by the local loop and
// the remote server's per-connection handler (spec §2's control flow:
// "the server's per-connection handler ... the executor is otherwise
// identical").
func (sh *Shell) runLine(line string, stdin io.Reader, stdout, stderr io.Writer) (Status, bool) {
	line = Normalize(line)
	if line == "" {
		fmt.Fprint(stderr, string(ErrNoCommands)+"\n")
		return Status{Kind: StatusOK}, false
	}

	pipeline, err := ParsePipeline(line)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return Status{Kind: StatusOK}, false
	}

	status, err := Execute(pipeline, sh.Session, IO{Stdin: stdin, Stdout: stdout, Stderr: stderr})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return Status{Kind: StatusOK}, false
	}

	return status, status.Kind == StatusOKExit
}

// RunLine is the exported form of runLine for callers outside this
// package (the remote server's connection handler).
func RunLine(sess *session.Session, line string, stdin io.Reader, stdout, stderr io.Writer) (Status, error) {
	sh := &Shell{Session: sess}
	status, _ := sh.runLine(line, stdin, stdout, stderr)
	return status, nil
}
