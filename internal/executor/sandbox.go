package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the hard wall-clock deadline for one execution.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one sandboxed run. Every failure mode (unsupported
// language, compile error, runtime error, timeout, setup failure) is expressed
// as a Result, never as an error escaping Run.
type Result struct {
	Output  string `json:"output"`
	Success bool   `json:"success"`
}

// Sandbox compiles and runs untrusted source text in an isolated, per-run
// temporary workspace under a hard deadline.
type Sandbox struct {
	languages map[string]Language
	timeout   time.Duration
	baseDir   string
}

// workspaceSeq disambiguates workspaces allocated within the same nanosecond.
var workspaceSeq uint64

// NewSandbox creates a Sandbox. A zero timeout selects DefaultTimeout; an
// empty baseDir selects a directory under the system temp dir.
func NewSandbox(languages map[string]Language, timeout time.Duration, baseDir string) *Sandbox {
	if languages == nil {
		languages = DefaultLanguages()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "codepair")
	}
	return &Sandbox{
		languages: languages,
		timeout:   timeout,
		baseDir:   baseDir,
	}
}

// Languages returns the supported language tags.
func (s *Sandbox) Languages() []string {
	tags := make([]string, 0, len(s.languages))
	for tag := range s.languages {
		tags = append(tags, tag)
	}
	return tags
}

// Run executes sourceText for the given language tag and returns the captured
// output. The workspace and every derived artifact are removed before Run
// returns, on all paths.
func (s *Sandbox) Run(ctx context.Context, sourceText, languageTag string) Result {
	lang, ok := s.languages[languageTag]
	if !ok {
		return Result{Output: fmt.Sprintf("Unsupported language: %s", languageTag), Success: false}
	}

	workspace, err := s.allocateWorkspace(lang, sourceText)
	if err != nil {
		log.Error().Err(err).Str("language", languageTag).Msg("sandbox workspace setup failed")
		return Result{Output: err.Error(), Success: false}
	}
	defer func() {
		if removeErr := os.RemoveAll(workspace); removeErr != nil {
			log.Warn().Err(removeErr).Str("workspace", workspace).Msg("sandbox cleanup failed")
		}
	}()

	return s.execute(ctx, lang, workspace)
}

// allocateWorkspace creates the per-run directory and writes the source file
// into it. Directory names derive from a nanosecond timestamp plus a
// process-wide counter so concurrent runs can never collide.
func (s *Sandbox) allocateWorkspace(lang Language, sourceText string) (string, error) {
	name := fmt.Sprintf("run-%d-%d", time.Now().UnixNano(), atomic.AddUint64(&workspaceSeq, 1))
	workspace := filepath.Join(s.baseDir, name)

	if err := os.MkdirAll(workspace, 0o750); err != nil {
		return "", errors.Wrap(err, "creating workspace directory")
	}

	sourcePath := filepath.Join(workspace, lang.sourceFileName())
	if err := os.WriteFile(sourcePath, []byte(sourceText), 0o644); err != nil {
		_ = os.RemoveAll(workspace)
		return "", errors.Wrap(err, "writing source file")
	}

	return workspace, nil
}

// execute runs the language command inside the workspace, racing completion
// against the deadline. The command runs in its own process group so a
// timed-out compiler and any binary it spawned are reaped together.
func (s *Sandbox) execute(ctx context.Context, lang Language, workspace string) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.Command("sh", "-c", lang.renderCommand(lang.sourceFileName()))
	cmd.Dir = workspace
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{Output: errors.Wrap(err, "starting process").Error(), Success: false}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		// Kill the whole group, then wait for the shell to be reaped so no
		// zombie survives the run.
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		return Result{
			Output:  fmt.Sprintf("Execution timed out after %s", s.timeout),
			Success: false,
		}
	case err := <-done:
		// A non-empty diagnostic stream means failure even on a zero exit
		// code; the diagnostics are the user-visible output in that case.
		if err != nil || stderr.Len() > 0 {
			output := stderr.String()
			if output == "" && err != nil {
				output = err.Error()
			}
			return Result{Output: output, Success: false}
		}
		return Result{Output: stdout.String(), Success: true}
	}
}
