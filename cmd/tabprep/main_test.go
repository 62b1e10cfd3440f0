package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/sklearn/pipeline"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	t.Cleanup(func() { errors.SetZerologWarnFunc(nil) })

	err := run(context.Background(), []string{"-config", "testdata/config.yaml", "-out", out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Contains(t, stdout.String(), "Training data shape: (16, ")
	assert.Contains(t, stdout.String(), "Validation data shape: (4, ")
	assert.Contains(t, stderr.String(), `"message":"Preprocessing finished"`)

	xTrain := readCSV(t, filepath.Join(out, "X_train.csv"))
	xVal := readCSV(t, filepath.Join(out, "X_val.csv"))
	require.Len(t, xTrain, 17)
	require.Len(t, xVal, 5)
	assert.Equal(t, xTrain[0], xVal[0], "train and validation share the output columns")
	assert.Equal(t, []string{"CryoSleep", "Age", "VIP"}, xTrain[0][:3])
	assert.NotContains(t, xTrain[0], "Cabin")
	assert.NotContains(t, xTrain[0], "Transported")

	yVal := readCSV(t, filepath.Join(out, "y_val.csv"))
	assert.Equal(t, []string{"Transported"}, yVal[0])
	assert.Len(t, yVal, 5)

	f, err := os.Open(filepath.Join(out, "pipeline.bin"))
	require.NoError(t, err)
	defer f.Close()
	p, err := pipeline.Load(f)
	require.NoError(t, err)
	names, err := p.FeatureNamesOut()
	require.NoError(t, err)
	assert.Equal(t, xTrain[0], names)

	_, err = os.Stat(filepath.Join(out, "means.svg"))
	assert.NoError(t, err)
}

func TestRunDeterministic(t *testing.T) {
	t.Cleanup(func() { errors.SetZerologWarnFunc(nil) })
	var first, second []byte
	for i, dst := range []*[]byte{&first, &second} {
		out := t.TempDir()
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(context.Background(),
			[]string{"-config", "testdata/config.yaml", "-out", out, "-log-format", "console"}, &stdout, &stderr), "run %d", i)
		data, err := os.ReadFile(filepath.Join(out, "X_val.csv"))
		require.NoError(t, err)
		*dst = data
	}
	assert.Equal(t, first, second)
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &stdout, &stderr))
	assert.Error(t, run(context.Background(), []string{"-config", "testdata/missing.yaml"}, &stdout, &stderr))
	assert.Error(t, run(context.Background(),
		[]string{"-config", "testdata/config.yaml", "-out", t.TempDir(), "-log-format", "xml"}, &stdout, &stderr))
}
