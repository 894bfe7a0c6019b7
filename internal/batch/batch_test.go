package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdocs/internal/models"
)

func record(name string) models.ExtractedRecord {
	return models.ExtractedRecord{
		Name:           models.StringPtr(name),
		ResolutionDate: models.StringPtr("2024-06-19"),
		Concept:        models.StringPtr("Por la cual se adopta <anexo> & tarifas"),
		FullText:       name + "\nTexto",
		ProcessDate:    "2024-07-01",
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode([]models.ExtractedRecord{record("RESOLUCION 1"), {FullText: "x", ProcessDate: "2024-07-01"}})
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "[\n    {\n        \"name\": \"RESOLUCION 1\","))
	assert.Contains(t, out, "<anexo> & tarifas", "HTML characters are not escaped")
	assert.Contains(t, out, "\"name\": null")
	assert.Contains(t, out, "\"concept\": null")
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriter_OverwritesPreviousBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "resolutions_processed.json")
	w := NewWriter(false)

	require.NoError(t, w.Write(path, []models.ExtractedRecord{record("A"), record("B")}))
	require.NoError(t, w.Write(path, []models.ExtractedRecord{record("C")}))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C", models.Deref(got[0].Name))

	assert.NoFileExists(t, path+BackupSuffix)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriter_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	w := NewWriter(true)

	require.NoError(t, w.Write(path, []models.ExtractedRecord{record("A")}))
	assert.NoFileExists(t, path+BackupSuffix, "no backup for the first batch")

	require.NoError(t, w.Write(path, []models.ExtractedRecord{record("B")}))

	prev, err := Load(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "A", models.Deref(prev[0].Name))

	cur, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "B", models.Deref(cur[0].Name))
}

func TestWriter_FailedWriteKeepsPreviousBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	w := NewWriter(true)

	require.NoError(t, w.Write(path, []models.ExtractedRecord{record("A")}))

	createTemp = func(string, string) (*os.File, error) {
		return nil, errors.New("disk full")
	}
	t.Cleanup(func() { createTemp = os.CreateTemp })

	require.Error(t, w.Write(path, []models.ExtractedRecord{record("B")}))

	cur, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A", models.Deref(cur[0].Name))
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestWriter_MissingPath(t *testing.T) {
	require.ErrorIs(t, NewWriter(false).Write("", nil), ErrMissingPath)
}

func TestDecode_RejectsInvalidBatches(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Not JSON", `{`},
		{"Not an array", `{"name": null}`},
		{"Missing field", `[{"name": null, "resolution_date": null, "concept": null, "full_text": "x"}]`},
		{"Empty full text", `[{"name": null, "resolution_date": null, "concept": null, "full_text": "", "process_date": "2024-07-01"}]`},
		{"Bad date", `[{"name": null, "resolution_date": "19/06/2024", "concept": null, "full_text": "x", "process_date": "2024-07-01"}]`},
		{"Extra field", `[{"name": null, "resolution_date": null, "concept": null, "full_text": "x", "process_date": "2024-07-01", "id": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidBatch)
		})
	}
}

func TestDecode_AcceptsNulls(t *testing.T) {
	got, err := Decode([]byte(`[{"name": null, "resolution_date": null, "concept": null, "full_text": "x", "process_date": "2024-07-01"}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
