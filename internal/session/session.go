// Package session carries the per-shell-process state that built-ins
// read and mutate: the working directory and the last observed
// external-command status. Spec §9 requires this live as struct state
// rather than a process global.
package session

import "os"

// Session is the shell process's mutable state. A local shell has
// exactly one Session for its lifetime; a remote server creates one
// per connection, so each connection has its own last-status. The
// working directory is the process's own: a cd on one connection
// moves it for every connection, and CWD records it as of this
// session's last successful cd.
type Session struct {
	// CWD is the process's current working directory, mutated by cd.
	CWD string

	// LastRC is the most recently observed external-command exit
	// status (spec §9 open question (a): "most recent external
	// command", not "any recent syscall").
	LastRC int
}

// New returns a Session seeded with the process's actual working
// directory.
func New() *Session {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}
	return &Session{CWD: cwd}
}

// Chdir changes the session's working directory and, on success, the
// process's actual working directory (cd has no meaning otherwise,
// since external commands inherit the process CWD via os/exec).
func (s *Session) Chdir(path string) error {
	if err := os.Chdir(path); err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	s.CWD = cwd
	return nil
}
