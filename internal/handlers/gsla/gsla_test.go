package gsla

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceandata/ingest/internal/core/domain"
)

const (
	nrtName    = "IMOS_OceanCurrent_HV_20230101T000000Z_GSLA_FV02_NRT00_C-20230102T010000Z.nc.gz"
	dmName     = "IMOS_OceanCurrent_HV_20110315T000000Z_GSLA_FV02_DM00_C-20141014T015543Z.nc.gz"
	yearlyName = "IMOS_OceanCurrent_HV_2023_C-20230102T010000Z.nc.gz"
)

func TestHandler_Classify(t *testing.T) {
	h := New(t.TempDir(), nil)

	tests := []struct {
		name     string
		file     string
		matched  bool
		category domain.Category
		year     string
		code     string
	}{
		{"near real time", nrtName, true, domain.CategoryNearRealTime, "2023", "NRT00"},
		{"delayed mode", dmName, true, domain.CategoryDelayedMode, "2011", "DM00"},
		{"yearly", yearlyName, true, domain.CategoryDelayedModeYearly, "2023", ""},
		{"random", "random_file.txt", false, "", "", ""},
		{"unknown product code", "IMOS_OceanCurrent_HV_20230101T000000Z_GSLA_FV02_XX00_C-20230102T010000Z.nc.gz", false, "", "", ""},
		{"uncompressed", "IMOS_OceanCurrent_HV_20230101T000000Z_GSLA_FV02_NRT00_C-20230102T010000Z.nc", false, "", "", ""},
		{"non-midnight", "IMOS_OceanCurrent_HV_20230101T120000Z_GSLA_FV02_NRT00_C-20230102T010000Z.nc.gz", false, "", "", ""},
		{"empty", "", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := h.Classify(tt.file)

			assert.Equal(t, tt.matched, cls.Matched)
			assert.Equal(t, tt.category, cls.Category)
			assert.Equal(t, tt.year, cls.Field(domain.FieldYear))
			assert.Equal(t, tt.code, cls.Field(domain.FieldProductCode))
		})
	}
}

func TestHandler_ResolveHierarchy(t *testing.T) {
	h := New(t.TempDir(), nil)

	tests := []struct {
		file string
		want domain.HierarchyPath
	}{
		{nrtName, domain.HierarchyPath("OceanCurrent/GSLA/NRT00/2023/" + nrtName)},
		{dmName, domain.HierarchyPath("OceanCurrent/GSLA/DM00/2011/" + dmName)},
		{yearlyName, domain.HierarchyPath("OceanCurrent/GSLA/DM00/yearfiles/" + yearlyName)},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			file := &domain.IncomingFile{Path: "/incoming/" + tt.file, Name: tt.file}
			cls := h.Classify(tt.file)

			first, err := h.ResolveHierarchy(context.Background(), file, cls)
			require.NoError(t, err)
			second, err := h.ResolveHierarchy(context.Background(), file, cls)
			require.NoError(t, err)

			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestHandler_ResolveHierarchy_Errors(t *testing.T) {
	h := New(t.TempDir(), nil)
	file := &domain.IncomingFile{Path: "/incoming/x.nc.gz", Name: "x.nc.gz"}

	_, err := h.ResolveHierarchy(context.Background(), file, domain.Matched(domain.CategoryNearRealTime, nil))
	assert.ErrorIs(t, err, domain.ErrResolution)

	_, err = h.ResolveHierarchy(context.Background(), file, domain.Matched(domain.CategoryGeneric, nil))
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func gzipFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func TestHandler_Prepare_DecompressesDailyProducts(t *testing.T) {
	workDir := t.TempDir()
	h := New(workDir, nil)
	h.newName = func() string { return "fixed" }
	src := gzipFile(t, t.TempDir(), nrtName, []byte("CDF\x01payload"))
	file := &domain.IncomingFile{Path: src, Name: nrtName}

	release, err := h.Prepare(context.Background(), file, h.Classify(nrtName))

	require.NoError(t, err)
	require.True(t, file.HasWorkingCopy())
	assert.Equal(t, filepath.Join(workDir, "fixed-IMOS_OceanCurrent_HV_20230101T000000Z_GSLA_FV02_NRT00_C-20230102T010000Z.nc"), file.WorkingCopy)
	data, err := os.ReadFile(file.WorkingCopy)
	require.NoError(t, err)
	assert.Equal(t, "CDF\x01payload", string(data))

	require.NoError(t, release())
	_, err = os.Stat(file.WorkingCopy)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, release(), "release is idempotent")
}

func TestHandler_Prepare_YearlyUsesOriginal(t *testing.T) {
	h := New(t.TempDir(), nil)
	file := &domain.IncomingFile{Path: "/incoming/" + yearlyName, Name: yearlyName}

	release, err := h.Prepare(context.Background(), file, h.Classify(yearlyName))

	require.NoError(t, err)
	assert.False(t, file.HasWorkingCopy())
	assert.NoError(t, release())
}

func TestHandler_Prepare_CorruptGzipLeavesNothing(t *testing.T) {
	workDir := t.TempDir()
	h := New(workDir, nil)
	src := filepath.Join(t.TempDir(), dmName)
	require.NoError(t, os.WriteFile(src, []byte("not gzip at all"), 0600))
	file := &domain.IncomingFile{Path: src, Name: dmName}

	release, err := h.Prepare(context.Background(), file, h.Classify(dmName))

	require.ErrorIs(t, err, domain.ErrInvalidFormat)
	assert.Equal(t, domain.KindData, domain.ClassifyError(err))
	require.NotNil(t, release)
	assert.False(t, file.HasWorkingCopy())
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandler_Prepare_TruncatedGzipRemovesPartialCopy(t *testing.T) {
	workDir := t.TempDir()
	h := New(workDir, nil)
	full := gzipFile(t, t.TempDir(), "full.gz", bytes.Repeat([]byte("sea level "), 10000))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), nrtName)
	require.NoError(t, os.WriteFile(src, data[:len(data)/2], 0600))
	file := &domain.IncomingFile{Path: src, Name: nrtName}

	_, err = h.Prepare(context.Background(), file, h.Classify(nrtName))

	require.ErrorIs(t, err, domain.ErrInvalidFormat)
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandler_Prepare_UnwritableWorkDirIsNotBadInput(t *testing.T) {
	h := New(filepath.Join(t.TempDir(), "missing"), nil)
	src := gzipFile(t, t.TempDir(), nrtName, []byte("CDF"))
	file := &domain.IncomingFile{Path: src, Name: nrtName}

	_, err := h.Prepare(context.Background(), file, h.Classify(nrtName))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidFormat)
}

func TestHandler_PublishOptions(t *testing.T) {
	h := New(t.TempDir(), domain.ParseCheckList("cf"))
	base := domain.PublishOptions{Index: true, ForceOverwriteOnMirror: true}

	assert.True(t, h.PublishOptions(h.Classify(nrtName), base).Index)
	assert.True(t, h.PublishOptions(h.Classify(dmName), base).Index)

	yearly := h.PublishOptions(h.Classify(yearlyName), base)
	assert.False(t, yearly.Index)
	assert.True(t, yearly.ForceOverwriteOnMirror)

	assert.Equal(t, []domain.CheckRequest{{Name: "cf"}}, h.Checks())
	assert.Equal(t, Name, h.Name())
}
