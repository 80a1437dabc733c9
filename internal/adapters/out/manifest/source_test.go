package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"coldchain/internal/adapters/out/manifest"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewFileSource_EmptyPath_ReturnsError(t *testing.T) {
	_, err := manifest.NewFileSource("")
	assert.Error(t, err)
}

func TestFileSource_Load_ValidManifest(t *testing.T) {
	orderID := kernel.NewUUID()
	path := writeManifest(t, `
stops:
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
  - nodeId: patient-7
    kind: patient
    lat: 41.41
    lon: 2.18
    orderId: `+orderID.String()+`
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	entries, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "depot-1", entries[0].NodeID)
	assert.Equal(t, stop.KindDepot, entries[0].Kind)
	assert.Nil(t, entries[0].OrderID)

	assert.Equal(t, "patient-7", entries[1].NodeID)
	assert.Equal(t, stop.KindPatient, entries[1].Kind)
	require.NotNil(t, entries[1].OrderID)
	assert.True(t, orderID.IsEqual(*entries[1].OrderID))
	assert.InDelta(t, 41.41, entries[1].Position.Lat(), 1e-9)
	assert.InDelta(t, 2.18, entries[1].Position.Lon(), 1e-9)

	assert.Equal(t, stop.KindDepot, entries[2].Kind)
}

func TestFileSource_Load_MissingFile_ReturnsError(t *testing.T) {
	source, err := manifest.NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "read manifest")
}

func TestFileSource_Load_MalformedYAML_ReturnsError(t *testing.T) {
	path := writeManifest(t, "stops: [nodeId: {{")

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "parse manifest")
}

func TestFileSource_Load_PatientWithoutOrder_ReturnsError(t *testing.T) {
	path := writeManifest(t, `
stops:
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
  - nodeId: patient-7
    kind: patient
    lat: 41.41
    lon: 2.18
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "patient-7")
}

func TestFileSource_Load_DepotWithOrder_ReturnsError(t *testing.T) {
	path := writeManifest(t, `
stops:
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
    orderId: `+kernel.NewUUID().String()+`
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "depot stops must not carry")
}

func TestFileSource_Load_SequenceNotAnchoredByDepots_ReturnsError(t *testing.T) {
	orderID := kernel.NewUUID()
	path := writeManifest(t, `
stops:
  - nodeId: patient-7
    kind: patient
    lat: 41.41
    lon: 2.18
    orderId: `+orderID.String()+`
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "open and close with a depot")
}

func TestFileSource_Load_UnknownKind_ReturnsError(t *testing.T) {
	path := writeManifest(t, `
stops:
  - nodeId: depot-1
    kind: warehouse
    lat: 41.39
    lon: 2.15
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "kind must be depot or patient")
}

func TestFileSource_Load_TooFewStops_ReturnsError(t *testing.T) {
	path := writeManifest(t, `
stops:
  - nodeId: depot-1
    kind: depot
    lat: 41.39
    lon: 2.15
`)

	source, err := manifest.NewFileSource(path)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorContains(t, err, "at least the opening and closing depot")
}
