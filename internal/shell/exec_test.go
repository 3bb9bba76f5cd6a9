package shell_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-dsh/dsh/internal/session"
	"github.com/go-dsh/dsh/internal/shell"
)

func newIO(stdin string) (shell.IO, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return shell.IO{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestExecute_SingleExternalCommand(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline("echo hello")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, stdout, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOK {
		t.Errorf("status = %+v, want StatusOK", status)
	}
	if got := stdout.String(); got != "hello\n" {
		t.Errorf("stdout = %q, want %q", got, "hello\n")
	}
}

func TestExecute_MultiStagePipeline(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline("echo hello | tr a-z A-Z")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, stdout, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOK {
		t.Errorf("status = %+v, want StatusOK", status)
	}
	if got := stdout.String(); got != "HELLO\n" {
		t.Errorf("stdout = %q, want %q", got, "HELLO\n")
	}
}

func TestExecute_ThreeStagePipeline(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline(`printf "b\na\nc\n" | sort | tr -d "\n"`)
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, stdout, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOK {
		t.Errorf("status = %+v, want StatusOK", status)
	}
	if got := stdout.String(); got != "abc" {
		t.Errorf("stdout = %q, want %q", got, "abc")
	}
}

func TestExecute_RedirectionToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	sess := session.New()
	p, err := shell.ParsePipeline("echo hi > " + path)
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOK {
		t.Errorf("status = %+v, want StatusOK", status)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "hi\n" {
		t.Errorf("file content = %q, want %q", data, "hi\n")
	}
}

func TestExecute_AppendRedirection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("first\n"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	sess := session.New()
	p, err := shell.ParsePipeline("echo second >> " + path)
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	if _, err := shell.Execute(p, sess, env); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file content = %q, want %q", data, "first\nsecond\n")
	}
}

func TestExecute_InputRedirection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("from-file\n"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	sess := session.New()
	p, err := shell.ParsePipeline("cat < " + path)
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, stdout, _ := newIO("")

	if _, err := shell.Execute(p, sess, env); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got := stdout.String(); got != "from-file\n" {
		t.Errorf("stdout = %q, want %q", got, "from-file\n")
	}
}

func TestExecute_ExternalNonZeroExit(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline("false")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusError || status.Code == 0 {
		t.Errorf("status = %+v, want a non-zero StatusError", status)
	}
	if sess.LastRC != status.Code {
		t.Errorf("sess.LastRC = %d, want %d", sess.LastRC, status.Code)
	}
}

func TestExecute_BadRedirectIsLocalizedToItsStage(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	// The first stage has a good redirect and should still produce
	// output even though the second stage's input redirect is bad
	// (spec §7: child-process failures are localized to that stage).
	sess := session.New()
	p, err := shell.ParsePipeline("echo hi > " + outPath + " | cat < /no/such/file/anywhere")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, stderr := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusError || status.Code == 0 {
		t.Errorf("status = %+v, want a non-zero StatusError", status)
	}
	if sess.LastRC != status.Code {
		t.Errorf("sess.LastRC = %d, want %d", sess.LastRC, status.Code)
	}
	if !strings.Contains(stderr.String(), "No such file") {
		t.Errorf("stderr = %q, want a no-such-file diagnostic", stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "hi\n" {
		t.Errorf("first stage's output file = %q, want %q (first stage must still run)", data, "hi\n")
	}
}

func TestExecute_CommandNotFound(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline("this-command-does-not-exist-anywhere")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, stderr := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusError {
		t.Errorf("status = %+v, want StatusError", status)
	}
	if !strings.Contains(stderr.String(), "not found") {
		t.Errorf("stderr = %q, want a not-found diagnostic", stderr.String())
	}
}

func TestExecute_SoleBuiltinFastPath(t *testing.T) {
	sess := session.New()
	sess.LastRC = 7

	p, err := shell.ParsePipeline("rc")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, stdout, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOK {
		t.Errorf("status = %+v, want StatusOK", status)
	}
	if got := stdout.String(); got != "7\n" {
		t.Errorf("stdout = %q, want %q", got, "7\n")
	}
}

func TestExecute_SoleBuiltinExitYieldsOKExit(t *testing.T) {
	sess := session.New()
	p, err := shell.ParsePipeline("exit")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOKExit {
		t.Errorf("status = %+v, want StatusOKExit", status)
	}
}

func TestExecute_NonLeaderBuiltinExitStillYieldsOKExit(t *testing.T) {
	// Spec §4.4/§9(c): a non-sole "exit" loses its cd/rc-style effects
	// but still resolves the whole pipeline to ok_exit.
	sess := session.New()
	p, err := shell.ParsePipeline("echo hi | exit | cat")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	status, err := shell.Execute(p, sess, env)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if status.Kind != shell.StatusOKExit {
		t.Errorf("status = %+v, want StatusOKExit", status)
	}
}

func TestExecute_NonLeaderCdEffectIsLost(t *testing.T) {
	sess := session.New()
	originalCWD := sess.CWD
	dir := t.TempDir()

	p, err := shell.ParsePipeline("echo hi | cd " + dir)
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}
	env, _, _ := newIO("")

	if _, err := shell.Execute(p, sess, env); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if sess.CWD != originalCWD {
		t.Errorf("sess.CWD = %q, want unchanged %q", sess.CWD, originalCWD)
	}
}
