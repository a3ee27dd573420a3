package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assemblies = `- receiver: Odd_1
  promoter: [J23100, J23106]
  rbs: B0034
  cds: GFP
  terminator: B0015
`

// run executes the command tree with args and returns what it printed.
// Flags are reset first since the tree is shared between tests
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(RootCmd)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func write(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func Test_assembleLoop(t *testing.T) {
	plan := write(t, "assemblies.yaml", assemblies)
	dir := t.TempDir()
	proto := filepath.Join(dir, "protocol.json")
	rep := filepath.Join(dir, "report.json")

	_, err := run(t, "assemble", "loop", plan, "--out", proto, "--report", rep, "--replicates", "1")
	require.NoError(t, err)
	require.FileExists(t, proto)
	require.FileExists(t, rep)

	out, err := run(t, "verify", proto)
	require.NoError(t, err)
	assert.Contains(t, out, "commands ok")
	assert.Contains(t, out, "thermocycler_plate A2: +20.0 uL")
	assert.NotContains(t, out, "thermocycler_plate A3")
}

func Test_assembleComposite(t *testing.T) {
	composites := write(t, "composites.yaml", "- [Odd_1, J23100, B0034, GFP, B0015]\n")

	out, err := run(t, "assemble", "composite", composites, "--layout")
	require.NoError(t, err)
	assert.Contains(t, out, "thermocycler_plate")
	assert.Contains(t, out, "Odd_1-J23100-B0034-GFP-B0015")
}

func Test_assembleErrors(t *testing.T) {
	plan := write(t, "assemblies.yaml", assemblies)
	fasta := write(t, "parts.fasta", ">J23100 promoter\nGGTCTCAAAAA\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"domestication without a backbone", []string{"assemble", "domestication", "GFP"}, "backbone"},
		{"missing plan", []string{"assemble", "loop", filepath.Join(t.TempDir(), "missing.yaml")}, ""},
		{"missing sequences", []string{"assemble", "loop", plan, "--sequences", fasta}, "no sequence for"},
		{"unknown enzyme", []string{"assemble", "domestication", "GFP", "-b", "pUPD", "-e", "EcoRI", "-q", fasta}, "EcoRI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func Test_transform(t *testing.T) {
	out, err := run(t, "transform", "pGFP", "pRFP")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "from opentrons import protocol_api"), out)
	assert.Contains(t, out, "execute_profile")
}

func Test_plate(t *testing.T) {
	dir := t.TempDir()
	python := filepath.Join(dir, "dilution.py")

	_, err := run(t, "plate", "samples", "gfp", "rfp", "--dry-run")
	require.NoError(t, err)

	_, err = run(t, "plate", "dilution", "culture", "arabinose", "--python", python, "--temperature-module")
	require.NoError(t, err)
	script, err := os.ReadFile(python)
	require.NoError(t, err)
	assert.Contains(t, string(script), "temperature module")

	_, err = run(t, "plate", "dilution", "culture", "arabinose", "--steps", "12")
	assert.Error(t, err)
}

func Test_calibrate(t *testing.T) {
	proto := filepath.Join(t.TempDir(), "rgb.json")

	_, err := run(t, "calibrate", "rgb", "--falcon", "--out", proto)
	require.NoError(t, err)

	out, err := run(t, "verify", proto)
	require.NoError(t, err)
	assert.Contains(t, out, "falcon_rack A1: -4400.0 uL")
	assert.Contains(t, out, "plate H12: +200.0 uL")
}

func Test_verifyErrors(t *testing.T) {
	empty := write(t, "empty.json", `{"commands": []}`)
	tip := write(t, "tip.json", `{"commands": [{"command": "dropTip", "pipette": "p20"}]}`)

	for _, path := range []string{empty, tip, filepath.Join(t.TempDir(), "missing.json")} {
		_, err := run(t, "verify", path)
		assert.Error(t, err, path)
	}
}

func Test_makeDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, makeDocs(RootCmd, dir))

	root, err := os.ReadFile(filepath.Join(dir, "pudu.md"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "permalink: /")

	loop, err := os.ReadFile(filepath.Join(dir, "pudu_assemble_loop.md"))
	require.NoError(t, err)
	assert.Contains(t, string(loop), "parent: assemble\ngrand_parent: pudu")

	transform, err := os.ReadFile(filepath.Join(dir, "pudu_transform.md"))
	require.NoError(t, err)
	assert.Contains(t, string(transform), "title: transform\nparent: pudu")
}
