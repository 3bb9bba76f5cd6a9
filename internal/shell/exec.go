package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/go-dsh/dsh/internal/session"
)

// IO is the caller-supplied output triple a Pipeline executes against
// (spec §4.6's precondition). In the local shell this is the process's
// own stdin/stdout/stderr; in remote mode it is the client socket for
// all three.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// exitSentinel is EXIT_SC (spec §3/§4.6): the status a non-leader
// built-in "exit" reports for its stage, causing the whole pipeline to
// return ok_exit even though no real child process ran exit(2).
const exitSentinel = 113

// stageResult is what either an external command or an inline
// built-in stage reports when it finishes.
type stageResult struct {
	code    int
	sentErr error // non-nil only for exec-failure diagnostics (ENOENT/EACCES/other)
}

// Execute runs the pipeline against io, returning its terminal status
// (spec §4.6). A single-command pipeline whose argv[0] names a
// built-in runs it directly in the shell process without forking,
// exactly as spec §4.4 requires.
func Execute(p *Pipeline, sess *session.Session, env IO) (Status, error) {
	if len(p.Segments) == 0 {
		return Status{Kind: StatusOK}, nil
	}

	if len(p.Segments) == 1 {
		seg := p.Segments[0]
		if kind := ClassifyBuiltin(seg.Argv); kind != BuiltinNone {
			return RunBuiltin(kind, seg.Argv, sess, env.Stdout)
		}
	}

	return executeProcesses(p, sess, env)
}

// executeProcesses implements spec §4.6 steps 2-6: create N-1 pipes,
// fork (via os/exec) one process per stage with dup2'd descriptors,
// apply redirections, exec, then wait for every child and aggregate
// the terminal status.
func executeProcesses(p *Pipeline, sess *session.Session, env IO) (Status, error) {
	n := len(p.Segments)

	stdins := make([]io.Reader, n)
	stdouts := make([]io.Writer, n)
	stderrs := make([]io.Writer, n)
	for i := range stdins {
		stdins[i] = env.Stdin
		stdouts[i] = env.Stdout
		stderrs[i] = env.Stderr
	}

	// Create pipes between adjacent stages.
	var pipeFDs []io.Closer
	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			closeAll(pipeFDs)
			return Status{}, fmt.Errorf("failed to create pipe: %w", err)
		}
		pipeFDs = append(pipeFDs, pr, pw)
		stdouts[i] = pw
		stdins[i+1] = pr
	}
	defer closeAll(pipeFDs)

	results := make([]stageResult, n)
	waiters := make([]func() stageResult, n)

	// Each stage applies its own redirection plan and starts (or fails
	// to start) independently (spec §4.6 step 3 places redirection
	// inside the per-stage child; §7's localization principle keeps a
	// bad redirect from aborting sibling stages). A redirect failure is
	// folded into that stage's stageResult exactly like a Start
	// failure, so the pipeline still completes and reports the last
	// non-zero status.
	var openFiles []io.Closer
	defer closeAll(openFiles)

	for i, seg := range p.Segments {
		failed := false
		for _, act := range seg.Actions {
			f, err := openRedirect(act)
			if err != nil {
				code, diag := classifyRedirectError(err)
				fmt.Fprintln(stderrs[i], diag)
				results[i] = stageResult{code: code}
				failed = true
				break
			}
			openFiles = append(openFiles, f)
			switch act.Kind {
			case RedirIn:
				stdins[i] = f
			case RedirOutTruncate, RedirOutAppend:
				stdouts[i] = f
			}
		}
		if failed {
			continue
		}

		if kind := ClassifyBuiltin(seg.Argv); kind != BuiltinNone {
			// Run it now, while its output pipe is still open; built-in
			// output is small enough to fit in the pipe buffer.
			results[i] = runInlineBuiltin(kind, seg.Argv, sess, stdouts[i])()
			continue
		}

		c := exec.Command(seg.Exe(), seg.Argv[1:]...)
		c.Stdin = stdins[i]
		c.Stdout = stdouts[i]
		c.Stderr = stderrs[i]

		if err := c.Start(); err != nil {
			code, diag := classifyExecError(err)
			fmt.Fprintln(stderrs[i], diag)
			results[i] = stageResult{code: code, sentErr: err}
			continue
		}
		waiters[i] = waitExternal(c)
	}

	// Close the parent's copies of every pipe/file fd now that each
	// child has its own (and inline built-ins have already written), so
	// readers downstream see EOF once writers finish (spec §4.6 step 4,
	// §8's "every pipe fd created during execution is closed").
	closeAll(pipeFDs)
	closeAll(openFiles)
	pipeFDs = nil
	openFiles = nil

	for i, w := range waiters {
		if w == nil {
			continue // inline built-in or failed start; result already set
		}
		results[i] = w()
	}

	return aggregate(results, sess)
}

// runInlineBuiltin executes a built-in that appears in a non-leader
// (or non-sole) pipeline position. Spec §4.4/§9(c): such a built-in's
// effects on the shell process are intentionally lost, since in the
// original implementation it runs inside the forked child rather than
// the shell itself; here cd only checks its arity and never changes
// the process's working directory, other built-ins run against a
// throwaway copy of the session, and an inline "exit" still
// reports the EXIT_SC sentinel so the overall pipeline resolves to
// ok_exit, matching the original's documented quirk.
func runInlineBuiltin(kind BuiltinKind, argv []string, sess *session.Session, stdout io.Writer) func() stageResult {
	return func() stageResult {
		if kind == BuiltinExit {
			return stageResult{code: exitSentinel}
		}
		if kind == BuiltinCd {
			if len(argv) > 2 {
				return stageResult{code: 1}
			}
			return stageResult{code: 0}
		}
		scratch := &session.Session{CWD: sess.CWD, LastRC: sess.LastRC}
		if _, err := RunBuiltin(kind, argv, scratch, stdout); err != nil {
			return stageResult{code: 1}
		}
		return stageResult{code: 0}
	}
}

func waitExternal(c *exec.Cmd) func() stageResult {
	return func() stageResult {
		err := c.Wait()
		if err == nil {
			return stageResult{code: 0}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				return stageResult{code: status.ExitStatus()}
			}
			return stageResult{code: exitErr.ExitCode()}
		}
		return stageResult{code: 1}
	}
}

// classifyExecError maps an exec.Cmd.Start failure to the canonical
// diagnostic and errno-equivalent exit code of spec §4.6.
func classifyExecError(err error) (code int, diagnostic string) {
	switch {
	case errors.Is(err, exec.ErrNotFound), os.IsNotExist(err):
		return int(syscall.ENOENT), "Command not found in PATH"
	case os.IsPermission(err):
		return int(syscall.EACCES), "Permission denied to execute command"
	default:
		return 1, "Error executing external command"
	}
}

// classifyRedirectError maps a failed redirection-target open to an
// errno-equivalent exit code and diagnostic. It mirrors
// classifyExecError's errno classification with wording for a file
// target rather than a program.
func classifyRedirectError(err error) (code int, diagnostic string) {
	switch {
	case os.IsNotExist(err):
		return int(syscall.ENOENT), "No such file or directory"
	case os.IsPermission(err):
		return int(syscall.EACCES), "Permission denied to open redirection target"
	default:
		return 1, "Error opening redirection target"
	}
}

func openRedirect(act RedirAction) (*os.File, error) {
	switch act.Kind {
	case RedirIn:
		return os.Open(act.Path)
	case RedirOutTruncate:
		return os.OpenFile(act.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	case RedirOutAppend:
		return os.OpenFile(act.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	default:
		return nil, fmt.Errorf("unknown redirection kind")
	}
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}

// aggregate turns per-stage results into the pipeline's terminal
// status (spec §4.6 step 6) and updates the session's last-status.
func aggregate(results []stageResult, sess *session.Session) (Status, error) {
	for _, r := range results {
		if r.code == exitSentinel {
			return Status{Kind: StatusOKExit}, nil
		}
	}

	lastFailing := 0
	for _, r := range results {
		if r.code != 0 {
			lastFailing = r.code
		}
	}
	if lastFailing != 0 {
		sess.LastRC = lastFailing
		return Status{Kind: StatusError, Code: lastFailing}, nil
	}
	sess.LastRC = 0
	return Status{Kind: StatusOK}, nil
}
