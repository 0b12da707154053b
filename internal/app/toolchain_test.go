package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultToolchain_JavaCommands(t *testing.T) {
	tc := DefaultToolchain()
	require.NoError(t, tc.Validate())

	inv := Invocation{Source: "/work/Hello.java", Dir: "/work", Unit: "Hello"}

	name, args := tc.CompilerCommand(inv)
	assert.Equal(t, "javac", name)
	assert.Equal(t, []string{"/work/Hello.java"}, args)

	name, args = tc.RuntimeCommand(inv)
	assert.Equal(t, "java", name)
	assert.Equal(t, []string{"-cp", "/work", "Hello"}, args)

	assert.Equal(t, "class Hello", tc.DeclarationFor("Hello"))
}

func TestParseToolchain_OverlaysDefaults(t *testing.T) {
	tc, err := ParseToolchain([]byte(`
compiler: /opt/jdk/bin/javac
compilerArgs: ["-encoding", "UTF-8", "{source}"]
outputEncoding: windows-1252
`))
	require.NoError(t, err)

	assert.Equal(t, "/opt/jdk/bin/javac", tc.Compiler)
	assert.Equal(t, []string{"-encoding", "UTF-8", "{source}"}, tc.CompilerArgs)
	assert.Equal(t, "windows-1252", tc.OutputEncoding)
	assert.Equal(t, "java", tc.Runtime, "unset fields keep defaults")
	assert.Equal(t, DefaultToolchain().RuntimeArgs, tc.RuntimeArgs)
}

func TestParseToolchain_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed yaml":           "compiler: [unterminated",
		"declaration without unit": "declaration: class Main",
		"unknown encoding":         "outputEncoding: klingon-8",
		"empty runtime":            `runtime: ""`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			tc, err := ParseToolchain([]byte(doc))
			assert.Error(t, err)
			assert.Equal(t, DefaultToolchain(), tc)
		})
	}
}

func TestLoadToolchain_MissingFileUsesDefaults(t *testing.T) {
	tc, err := LoadToolchain(filepath.Join(t.TempDir(), "toolchain.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultToolchain(), tc)
}

func TestLoadToolchain_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolchain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime: kotlin\nruntimeArgs: [\"-cp\", \"{dir}\", \"{unit}Kt\"]\n"), 0644))

	tc, err := LoadToolchain(path)
	require.NoError(t, err)

	_, args := tc.RuntimeCommand(Invocation{Dir: "/w", Unit: "Main"})
	assert.Equal(t, "kotlin", tc.Runtime)
	assert.Equal(t, []string{"-cp", "/w", "MainKt"}, args)
}
