package executor

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SandboxSuite struct {
	suite.Suite

	baseDir string
	sandbox *Sandbox
}

func (s *SandboxSuite) SetupTest() {
	s.baseDir = s.T().TempDir()
	s.sandbox = NewSandbox(nil, 0, s.baseDir)
}

func (s *SandboxSuite) requireTool(name string) {
	if _, err := exec.LookPath(name); err != nil {
		s.T().Skipf("%s not installed", name)
	}
}

// assertWorkspacesRemoved checks that no run left its directory or any
// artifact behind.
func (s *SandboxSuite) assertWorkspacesRemoved() {
	entries, err := os.ReadDir(s.baseDir)
	s.NoError(err)
	s.Empty(entries)
}

func (s *SandboxSuite) TestUnsupportedLanguage() {
	result := s.sandbox.Run(context.Background(), "print(1)", "brainfuck")

	s.False(result.Success)
	s.Contains(result.Output, "Unsupported language")
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestJavascriptHelloWorld() {
	s.requireTool("node")

	result := s.sandbox.Run(context.Background(), `console.log("Hello, World!")`, "javascript")

	s.True(result.Success, "output: %s", result.Output)
	s.Contains(result.Output, "Hello, World!")
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestPythonHelloWorld() {
	s.requireTool("python3")

	result := s.sandbox.Run(context.Background(), `print("Hello, World!")`, "python")

	s.True(result.Success, "output: %s", result.Output)
	s.Contains(result.Output, "Hello, World!")
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestRuntimeErrorIsFailure() {
	s.requireTool("python3")

	result := s.sandbox.Run(context.Background(), `raise ValueError("boom")`, "python")

	s.False(result.Success)
	s.Contains(result.Output, "boom")
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestCompileErrorIsFailure() {
	s.requireTool("g++")

	source := `
#include <iostream>
int main() {
    std::cout << "hi"
    return 0;
}
`
	result := s.sandbox.Run(context.Background(), source, "cpp")

	s.False(result.Success)
	s.NotEmpty(result.Output)
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestInfiniteLoopTimesOut() {
	s.requireTool("python3")

	sandbox := NewSandbox(nil, 2*time.Second, s.baseDir)

	start := time.Now()
	result := sandbox.Run(context.Background(), "while True:\n    pass\n", "python")
	elapsed := time.Since(start)

	s.False(result.Success)
	s.Contains(result.Output, "timed out")
	s.Less(elapsed, 5*time.Second, "timed-out run must return within a bounded grace period")
	s.assertWorkspacesRemoved()
}

// A compiled run that stalls must be reaped together with the shell that
// spawned it, leaving no process group member behind.
func (s *SandboxSuite) TestTimeoutKillsChildProcesses() {
	s.requireTool("node")

	sandbox := NewSandbox(nil, 1*time.Second, s.baseDir)
	result := sandbox.Run(context.Background(), "setInterval(() => {}, 1000)", "javascript")

	s.False(result.Success)
	s.Contains(result.Output, "timed out")
	s.assertWorkspacesRemoved()
}

func (s *SandboxSuite) TestConcurrentRunsDoNotInterfere() {
	s.requireTool("python3")

	results := make([]Result, 2)
	var wg sync.WaitGroup
	for i, text := range []string{"first", "second"} {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			results[i] = s.sandbox.Run(context.Background(), `print("`+text+`")`, "python")
		}(i, text)
	}
	wg.Wait()

	s.True(results[0].Success, "output: %s", results[0].Output)
	s.True(results[1].Success, "output: %s", results[1].Output)
	s.Contains(results[0].Output, "first")
	s.NotContains(results[0].Output, "second")
	s.Contains(results[1].Output, "second")
	s.NotContains(results[1].Output, "first")
	s.assertWorkspacesRemoved()
}

func TestSandboxSuite(t *testing.T) {
	suite.Run(t, new(SandboxSuite))
}
