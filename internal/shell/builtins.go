package shell

import (
	"fmt"
	"io"

	"github.com/go-dsh/dsh/internal/session"
	"github.com/go-dsh/dsh/internal/ui"
)

// BuiltinKind tags the fixed set of built-ins spec §4.4 recognizes,
// determined solely by argv[0]. Execute runs a sole built-in in the
// shell process and a built-in stage of a longer pipeline inline.
type BuiltinKind int

const (
	BuiltinNone BuiltinKind = iota
	BuiltinExit
	BuiltinCd
	BuiltinRc
	BuiltinDragon
)

// ClassifyBuiltin returns the BuiltinKind for argv[0], or BuiltinNone
// if it names no built-in.
func ClassifyBuiltin(argv []string) BuiltinKind {
	switch argv[0] {
	case "exit":
		return BuiltinExit
	case "cd":
		return BuiltinCd
	case "rc":
		return BuiltinRc
	case "dragon":
		return BuiltinDragon
	default:
		return BuiltinNone
	}
}

// StatusKind is the terminal status of a pipeline (spec §3).
type StatusKind int

const (
	StatusOK StatusKind = iota
	StatusOKExit
	StatusError
)

// Status is the terminal status code of a Pipeline run (spec §3):
// ok_exit results from a built-in exit, whether it is the sole command
// or any stage of a multi-stage pipeline.
type Status struct {
	Kind StatusKind
	Code int
}

// RunBuiltin executes a built-in in the shell process itself, per
// spec §4.4. It never forks: the effects (cd's chdir, exit's ok_exit)
// apply directly to the caller's Session.
func RunBuiltin(kind BuiltinKind, argv []string, sess *session.Session, stdout io.Writer) (Status, error) {
	switch kind {
	case BuiltinExit:
		return Status{Kind: StatusOKExit}, nil

	case BuiltinCd:
		switch len(argv) {
		case 1:
			// No argument: no-op (spec §4.4).
		case 2:
			// Errors are swallowed: cd is ok regardless of chdir
			// success (spec §4.4).
			_ = sess.Chdir(argv[1])
		default:
			return Status{}, fmt.Errorf("cd: too many arguments")
		}
		return Status{Kind: StatusOK}, nil

	case BuiltinRc:
		fmt.Fprintf(stdout, "%d\n", sess.LastRC)
		return Status{Kind: StatusOK}, nil

	case BuiltinDragon:
		fmt.Fprintln(stdout, ui.RenderDragon())
		return Status{Kind: StatusOK}, nil

	default:
		return Status{}, fmt.Errorf("not a built-in")
	}
}
