package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T) string {
	t.Helper()
	statuses := []string{"operating", "closed", "operating", "acquired", "operating", "closed", "operating", "operating", "closed", "operating"}

	var b strings.Builder
	b.WriteString("funding_total_usd,funding_rounds,founded_at,first_funding_at,last_funding_at,country_code,status\n")
	for i, s := range statuses {
		fmt.Fprintf(&b, "\"%d,000\",%d,2004-01-01,2007-01-0%d,2012-03-01,USA,%s\n", 300*(i+1), 1+i%3, 1+i%9, s)
	}
	path := filepath.Join(t.TempDir(), "investments.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestCLI_TrainPredictArtifacts(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ARTIFACT_DIR", dir)
	t.Setenv("ESTIMATORS", "10")

	out, err := execute(t, "artifacts")
	require.NoError(t, err)
	assert.Contains(t, out, "No artifacts")

	_, err = execute(t, "predict")
	require.Error(t, err, "predict before training must fail")

	out, err = execute(t, "train", "--source", writeSource(t), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Model and label encoder saved")
	assert.Contains(t, out, "[closed operating]")

	out, err = execute(t, "predict", "--funding-total-usd", "500000", "--funding-rounds", "2",
		"--funding-duration-days", "365", "--is-in-us", "1")
	require.NoError(t, err)
	status := strings.TrimSpace(out)
	assert.Contains(t, []string{"operating", "closed"}, status)

	out, err = execute(t, "predict", "--json", `{"funding_rounds": "3"}`)
	require.NoError(t, err)
	assert.Contains(t, []string{"operating", "closed"}, strings.TrimSpace(out))

	_, err = execute(t, "predict", "--json", `{not json`)
	assert.Error(t, err)

	out, err = execute(t, "artifacts")
	require.NoError(t, err)
	assert.Contains(t, out, "FIT ID")
	assert.Contains(t, out, "*")
}

func TestCLI_InvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ARTIFACT_DIR", t.TempDir())
	t.Setenv("ESTIMATORS", "0")

	_, err := execute(t, "artifacts")
	assert.Error(t, err)
}
