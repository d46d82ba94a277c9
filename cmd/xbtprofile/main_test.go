package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadTemperatures(t *testing.T) {
	got, err := readTemperatures(strings.NewReader("20.5 20.25\n\t19\n18.5e0 \n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{20.5, 20.25, 19, 18.5}, got)

	_, err = readTemperatures(strings.NewReader("20 warm 19"))
	assert.ErrorContains(t, err, "sample 1")
}

func TestProfileRaw(t *testing.T) {
	out, err := run(t, "10 11 12", "profile", "-r", "raw", "--a", "1", "--b", "0", "--frequency", "2")
	require.NoError(t, err)
	assert.Equal(t, "0.50\t10.0000\n1.00\t11.0000\n1.50\t12.0000\n", out)
}

func TestProfileOneMeter(t *testing.T) {
	out, err := run(t, "10 11 12 13 14", "profile", "--a", "1", "--b", "0", "--frequency", "2")
	require.NoError(t, err)
	assert.Equal(t, "1.00\t11.0000\n2.00\t13.0000\n", out)
}

func TestProfileUnknownResolution(t *testing.T) {
	_, err := run(t, "10 11 12", "profile", "-r", "5")
	assert.ErrorContains(t, err, "unknown resolution")
}

func TestInflections(t *testing.T) {
	out, err := run(t, "10 9 7 6.5 5.5", "inflections", "--a", "2", "--b", "0", "--frequency", "2")
	require.NoError(t, err)
	assert.Equal(t, "3.00\t7.0000\n4.00\t6.5000\n", out)
}

func TestUnknownProbe(t *testing.T) {
	_, err := run(t, "10 11 12", "profile", "--probe", "999")
	assert.Error(t, err)
}

func TestProbes(t *testing.T) {
	out, err := run(t, "", "probes")
	require.NoError(t, err)
	assert.Contains(t, out, "052\tSippican Deep Blue (Hanawa 1995)")
}
