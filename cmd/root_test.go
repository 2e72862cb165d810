package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarrot/xcodeframeworks/internal/reconcile"
	"github.com/gocarrot/xcodeframeworks/pbxproj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allAdded = "Added 'System/Library/Frameworks/SystemConfiguration.framework'\n" +
	"Added 'System/Library/Frameworks/Accounts.framework'\n" +
	"Added 'System/Library/Frameworks/Social.framework'\n" +
	"Added 'System/Library/Frameworks/AdSupport.framework'\n" +
	"Added 'usr/lib/libsqlite3.dylib'\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func run(args ...string) result {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func copyFixture(t *testing.T) (string, []byte) {
	t.Helper()
	data, err := os.ReadFile("../pbxproj/testdata/project.pbxproj")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "project.pbxproj")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path, data
}

func loadProject(t *testing.T, path string) *pbxproj.PbxProject {
	t.Helper()
	project := pbxproj.NewPbxProject(path)
	require.NoError(t, project.Parse())
	return &project
}

func backups(t *testing.T, input string) []string {
	t.Helper()
	matches, err := filepath.Glob(input + "_*.backup")
	require.NoError(t, err)
	return matches
}

func TestRunWritesOutput(t *testing.T) {
	input, original := copyFixture(t)
	output := filepath.Join(filepath.Dir(input), "out.pbxproj")

	res := run("-i", input, "-o", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, allAdded, res.stdout)

	unchanged, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged)
	assert.Empty(t, backups(t, input))

	project := loadProject(t, output)
	for _, dep := range reconcile.Required {
		assert.Len(t, project.FileReferences(dep.Path(), reconcile.SdkRoot), 1, dep.Name)
	}
}

func TestRunLongFlags(t *testing.T) {
	input, _ := copyFixture(t)
	output := filepath.Join(filepath.Dir(input), "out.pbxproj")

	res := run("--input", input, "--output", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, allAdded, res.stdout)
	assert.FileExists(t, output)
}

func TestRunSkipsExistingDependency(t *testing.T) {
	input, _ := copyFixture(t)
	project := loadProject(t, input)
	require.NoError(t, project.AddFile("System/Library/Frameworks/Accounts.framework", "SDKROOT"))
	require.NoError(t, project.Save(""))
	output := filepath.Join(filepath.Dir(input), "out.pbxproj")

	res := run("-i", input, "-o", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Added 'System/Library/Frameworks/SystemConfiguration.framework'\n"+
		"Added 'System/Library/Frameworks/Social.framework'\n"+
		"Added 'System/Library/Frameworks/AdSupport.framework'\n"+
		"Added 'usr/lib/libsqlite3.dylib'\n", res.stdout)

	reconciled := loadProject(t, output)
	assert.Len(t, reconciled.FileReferences("System/Library/Frameworks/Accounts.framework", "SDKROOT"), 1)
}

func TestRunInPlaceKeepsBackup(t *testing.T) {
	input, original := copyFixture(t)

	res := run("-i", input)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, allAdded, res.stdout)

	found := backups(t, input)
	require.Len(t, found, 1)
	backup, err := os.ReadFile(found[0])
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	project := loadProject(t, input)
	for _, dep := range reconcile.Required {
		assert.True(t, project.HasFile(dep.Path(), reconcile.SdkRoot), dep.Name)
	}
}

func TestRunAlreadyReconciledIsNoop(t *testing.T) {
	input, _ := copyFixture(t)
	output := filepath.Join(filepath.Dir(input), "out.pbxproj")
	require.Equal(t, 0, run("-i", input, "-o", output).code)

	reconciled, err := os.ReadFile(output)
	require.NoError(t, err)
	second := filepath.Join(filepath.Dir(input), "second.pbxproj")

	res := run("-i", output, "-o", second)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.NoFileExists(t, second)

	res = run("-i", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Empty(t, backups(t, output))

	after, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, reconciled, after)
}

func TestRunHelp(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		res := run(flag)
		assert.Equal(t, 0, res.code, flag)
		assert.Contains(t, res.stdout, "Usage:", flag)
		assert.Contains(t, res.stdout, "--input", flag)
	}
}

func TestRunBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "unknown flag", args: []string{"-i", "project.pbxproj", "--bogus"}, msg: "unknown flag: --bogus"},
		{name: "missing value", args: []string{"-i"}, msg: "flag needs an argument"},
		{name: "missing input", args: []string{"-o", "out.pbxproj"}, msg: `required flag(s) "input" not set`},
		{name: "positional argument", args: []string{"-i", "project.pbxproj", "extra"}, msg: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.stderr, tt.msg)
			assert.Contains(t, res.stdout+res.stderr, "Usage:")
		})
	}
}

func TestRunMissingInputFile(t *testing.T) {
	res := run("-i", filepath.Join(t.TempDir(), "missing.pbxproj"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "missing.pbxproj")
	assert.NotContains(t, res.stderr, "Usage:")
	assert.Empty(t, res.stdout)
}

func TestRunMalformedProject(t *testing.T) {
	input := filepath.Join(t.TempDir(), "project.pbxproj")
	require.NoError(t, os.WriteFile(input, []byte("{ objects = {"), 0644))

	res := run("-i", input)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "pbxparser")
	assert.Empty(t, backups(t, input))
}
