package diaglog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceandata/ingest/internal/core/domain"
)

func TestLog_Append(t *testing.T) {
	dir := t.TempDir()
	log, err := New(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	log.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	path, err := log.Append("a.nc", "structure", "not a netcdf file\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "a.nc.log"), path)

	_, err = log.Append("a.nc", "cf:1.6", "line 1\nline 2")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2024-03-01T12:00:00Z structure\nnot a netcdf file\n\n"+
			"2024-03-01T12:00:00Z cf:1.6\nline 1\nline 2\n\n",
		string(data))
}

func TestLog_SeparateFiles(t *testing.T) {
	log, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := log.Append("a.nc", "cf", "x")
	require.NoError(t, err)
	b, err := log.Append("b.nc", "cf", "y")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLog_InvalidName(t *testing.T) {
	log, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../a.nc", "dir/a.nc"} {
		_, err := log.Append(name, "cf", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
