package executor

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Language describes how one supported language is compiled and run.
// Command is a shell command template; {source} expands to the source file
// name and {binary} to the source file name with its extension stripped
// (both relative to the workspace, which is the working directory).
type Language struct {
	Extension string `yaml:"extension"`
	// Filename forces a fixed source file name for toolchains that care
	// (javac requires the file to match the public class).
	Filename string `yaml:"filename,omitempty"`
	Command  string `yaml:"command"`
}

// DefaultLanguages is the built-in closed set of supported languages.
// Adding a language means adding one entry here or in the languages file.
func DefaultLanguages() map[string]Language {
	return map[string]Language{
		"javascript": {
			Extension: "js",
			Command:   "node {source}",
		},
		"python": {
			Extension: "py",
			Command:   "python3 {source}",
		},
		"cpp": {
			Extension: "cpp",
			Command:   "g++ {source} -o {binary} && ./{binary}",
		},
		"java": {
			Extension: "java",
			Filename:  "Main.java",
			Command:   "javac {source} && java Main",
		},
	}
}

// LoadLanguages reads additional or overriding language entries from a YAML
// file and merges them over the defaults.
func LoadLanguages(path string) (map[string]Language, error) {
	languages := DefaultLanguages()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading languages file %s", path)
	}

	var extra map[string]Language
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, errors.Wrapf(err, "parsing languages file %s", path)
	}

	for tag, lang := range extra {
		languages[tag] = lang
	}
	return languages, nil
}

// sourceFileName returns the workspace-relative source file name for the
// language.
func (l Language) sourceFileName() string {
	if l.Filename != "" {
		return l.Filename
	}
	return "source." + l.Extension
}

// renderCommand expands the {source} and {binary} placeholders.
func (l Language) renderCommand(sourceFile string) string {
	binary := strings.TrimSuffix(sourceFile, "."+l.Extension)
	return strings.NewReplacer(
		"{source}", sourceFile,
		"{binary}", binary,
	).Replace(l.Command)
}
