package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCtyDat = `Finland:                  15:  18:  EU:   61.38:   -24.82:    -2.0:  OH:
    OF,OG,OH,OI,OJ,=OH/RX3AMI/LH;
United States:            05:  08:  NA:   37.53:    91.67:     5.0:  K:
    AA,K,N,W,KH6(31)[61]<21.12/157.48>{OC}~10.0~,
    =K1A/KH7Z(4)[7];
Sicily:                   15:  28:  EU:   37.50:   -14.00:    -1.0:  *IT9:
    IT9,IG9;
`

// runCmd executes a fresh command tree with an empty home directory.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestLookupCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cty.dat", []byte(testCtyDat))

	out, err := runCmd(t, "lookup", "--file", path, "oh2bh", "KH6ABC", "OH/RX3AMI/LH", "ZZ9ZZ")
	require.NoError(t, err)

	assert.Contains(t, out, "OH2BH: Finland (OH) CQ 15, ITU 18, EU, 61.38/-24.82, UTC+2.0 [prefix OH]\n")
	assert.Contains(t, out, "KH6ABC: United States (K) CQ 31, ITU 61, OC, 21.12/157.48, UTC-10.0 [prefix KH6]\n")
	assert.Contains(t, out, "OH/RX3AMI/LH: Finland (OH) CQ 15, ITU 18, EU, 61.38/-24.82, UTC+2.0 [callsign OH/RX3AMI/LH]\n")
	assert.Contains(t, out, "ZZ9ZZ: no match\n")
}

func TestLookupCommand_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cty.dat", []byte(testCtyDat))

	out, err := runCmd(t, "lookup", "-f", path, "--json", "K1A/KH7Z", "ZZ9ZZ")
	require.NoError(t, err)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, "K1A/KH7Z", results[0]["callsign"])
	assert.Equal(t, true, results[0]["found"])
	assert.Equal(t, true, results[0]["exact"])
	assert.Equal(t, "United States", results[0]["country"])
	assert.Equal(t, float64(4), results[0]["cqz"])
	assert.Equal(t, float64(7), results[0]["ituz"])

	assert.Equal(t, false, results[1]["found"])
	assert.NotContains(t, results[1], "country")
}

func TestLookupCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.dat", []byte("Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH:\n    OH,,OG;\n"))

	_, err := runCmd(t, "lookup", "--file", bad, "OH2BH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2, column 8")

	_, err = runCmd(t, "lookup", "--file", filepath.Join(dir, "missing.dat"), "OH2BH")
	assert.Error(t, err)

	_, err = runCmd(t, "lookup", "--file", bad)
	assert.Error(t, err, "at least one callsign is required")
}

func TestLookupCommand_Charset(t *testing.T) {
	dir := t.TempDir()

	// A legacy label still loads a file whose content is plain ASCII.
	ascii := writeFile(t, dir, "ascii.dat", []byte(testCtyDat))
	out, err := runCmd(t, "lookup", "--file", ascii, "--charset", "windows-1252", "OH2BH")
	require.NoError(t, err)
	assert.Contains(t, out, "OH2BH: Finland (OH)")

	latin1 := writeFile(t, dir, "latin1.dat", []byte("\xc5land Islands:            15:  18:  EU:   60.13:   -20.37:    -2.0:  OH0:\n    OH0,=OH0KAG/9;\n"))

	// Invalid UTF-8 is a decode error.
	_, err = runCmd(t, "lookup", "--file", latin1, "OH0A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8 at byte 0")

	// Transcoded, the name is no longer ASCII and the grammar rejects it.
	_, err = runCmd(t, "lookup", "--file", latin1, "--charset", "iso-8859-1", "OH0A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1, column 1: expected Country name")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cty.dat", []byte(testCtyDat))

	out, err := runCmd(t, "check", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, path+": OK")
	assert.Contains(t, out, "records:   3 (1 WAE only)")
	assert.Contains(t, out, "aliases:   14 (12 prefixes, 2 callsigns)")
	assert.Contains(t, out, "overrides: 2 aliases")

	bad := writeFile(t, dir, "bad.dat", []byte("Finland: 15: 18: EU\n"))
	_, err = runCmd(t, "check", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.Contains(t, err.Error(), "line 1, column 20: expected ':'")
}

func TestCountriesCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cty.dat", []byte(testCtyDat))

	out, err := runCmd(t, "countries", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "PREFIX")
	assert.Contains(t, out, "Finland")
	assert.Contains(t, out, "*IT9")

	out, err = runCmd(t, "countries", "--file", path, "--json")
	require.NoError(t, err)
	var countries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &countries))
	require.Len(t, countries, 3)
	assert.Equal(t, "Sicily", countries[2]["country"])
}

func TestConfigSources(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cty.dat", []byte(testCtyDat))

	t.Run("config flag", func(t *testing.T) {
		cfg := writeFile(t, dir, "ctydat.yaml", []byte("file: "+path+"\n"))
		out, err := runCmd(t, "--config", cfg, "lookup", "W1AW")
		require.NoError(t, err)
		assert.Contains(t, out, "W1AW: United States")
	})

	t.Run("missing config flag file", func(t *testing.T) {
		_, err := runCmd(t, "--config", filepath.Join(dir, "nope.yaml"), "lookup", "W1AW")
		assert.Error(t, err)
	})

	t.Run("home config", func(t *testing.T) {
		home := t.TempDir()
		writeFile(t, home, ".ctydat.yaml", []byte("file: "+path+"\n"))
		homedir.DisableCache = true
		t.Setenv("HOME", home)

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"lookup", "N0CALL"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "N0CALL: United States")
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("CTYDAT_FILE", path)
		out, err := runCmd(t, "lookup", "OH2BH")
		require.NoError(t, err)
		assert.Contains(t, out, "OH2BH: Finland")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := runCmd(t, "--loglevel", "chatty", "lookup", "--file", path, "OH2BH")
		assert.Error(t, err)
	})
}

func TestUTCOffset(t *testing.T) {
	assert.Equal(t, float32(2), utcOffset(-2))
	assert.Equal(t, float32(-5), utcOffset(5))
	assert.Equal(t, "+0.0", fmt.Sprintf("%+.1f", utcOffset(0)))
}
