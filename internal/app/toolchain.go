package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Argument template placeholders
const (
	PlaceholderSource = "{source}"
	PlaceholderDir    = "{dir}"
	PlaceholderUnit   = "{unit}"
)

// Toolchain describes the external compiler/runtime pair.
type Toolchain struct {
	Compiler     string   `yaml:"compiler" json:"compiler"`
	CompilerArgs []string `yaml:"compilerArgs" json:"compilerArgs"`
	Runtime      string   `yaml:"runtime" json:"runtime"`
	RuntimeArgs  []string `yaml:"runtimeArgs" json:"runtimeArgs"`

	// Declaration is the text a source file must contain for the naming
	// check to pass, e.g. "class {unit}".
	Declaration string `yaml:"declaration" json:"declaration"`

	// OutputEncoding names the character set the toolchain writes in.
	// Empty means UTF-8.
	OutputEncoding string `yaml:"outputEncoding" json:"outputEncoding"`
}

// DefaultToolchain returns the javac/java pair.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Compiler:     "javac",
		CompilerArgs: []string{PlaceholderSource},
		Runtime:      "java",
		RuntimeArgs:  []string{"-cp", PlaceholderDir, PlaceholderUnit},
		Declaration:  "class " + PlaceholderUnit,
	}
}

// Invocation is the set of values substituted into argument templates.
type Invocation struct {
	Source string
	Dir    string
	Unit   string
}

func (inv Invocation) expand(s string) string {
	return strings.NewReplacer(
		PlaceholderSource, inv.Source,
		PlaceholderDir, inv.Dir,
		PlaceholderUnit, inv.Unit,
	).Replace(s)
}

func (inv Invocation) expandAll(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = inv.expand(arg)
	}
	return out
}

// CompilerCommand returns the compiler executable and its expanded arguments.
func (t Toolchain) CompilerCommand(inv Invocation) (string, []string) {
	return t.Compiler, inv.expandAll(t.CompilerArgs)
}

// RuntimeCommand returns the runtime executable and its expanded arguments.
func (t Toolchain) RuntimeCommand(inv Invocation) (string, []string) {
	return t.Runtime, inv.expandAll(t.RuntimeArgs)
}

// DeclarationFor returns the text the naming check looks for.
func (t Toolchain) DeclarationFor(unit string) string {
	return Invocation{Unit: unit}.expand(t.Declaration)
}

// Validate reports configuration that would make every run fail.
func (t Toolchain) Validate() error {
	if t.Compiler == "" {
		return errors.New("toolchain: compiler is required")
	}
	if t.Runtime == "" {
		return errors.New("toolchain: runtime is required")
	}
	if !strings.Contains(t.Declaration, PlaceholderUnit) {
		return fmt.Errorf("toolchain: declaration %q must contain %s", t.Declaration, PlaceholderUnit)
	}
	if _, err := NewDrainer(t.OutputEncoding); err != nil {
		return fmt.Errorf("toolchain: %w", err)
	}
	return nil
}

// getToolchainPath returns the path to the optional toolchain override file.
func getToolchainPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, AppName, "toolchain.yaml"), nil
}

// ParseToolchain overlays YAML data onto the defaults. Fields the document
// leaves out keep their default values.
func ParseToolchain(data []byte) (Toolchain, error) {
	tc := DefaultToolchain()
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return DefaultToolchain(), fmt.Errorf("failed to parse toolchain config: %w", err)
	}
	if err := tc.Validate(); err != nil {
		return DefaultToolchain(), err
	}
	return tc, nil
}

// LoadToolchain reads the toolchain file at path. A missing file yields the
// defaults without error.
func LoadToolchain(path string) (Toolchain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultToolchain(), nil
		}
		return DefaultToolchain(), fmt.Errorf("failed to read toolchain config: %w", err)
	}
	return ParseToolchain(data)
}

// LoadUserToolchain loads the toolchain from the user config directory,
// falling back to defaults on any problem.
func LoadUserToolchain() Toolchain {
	path, err := getToolchainPath()
	if err != nil {
		log.Printf("⚠️ %v, using default toolchain", err)
		return DefaultToolchain()
	}

	tc, err := LoadToolchain(path)
	if err != nil {
		log.Printf("⚠️ Ignoring %s: %v", path, err)
		return DefaultToolchain()
	}
	log.Printf("🔧 Toolchain: compiler=%s runtime=%s", tc.Compiler, tc.Runtime)
	return tc
}
