package stability_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stabilityclient "coldchain/internal/adapters/out/stability"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*stabilityclient.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := stabilityclient.NewClient(server.URL, time.Second)
	require.NoError(t, err)
	return client, server
}

func TestNewClient_EmptyBaseURL_ReturnsError(t *testing.T) {
	_, err := stabilityclient.NewClient("", time.Second)
	assert.Error(t, err)
}

func TestClient_Start_PostsToSessionStart(t *testing.T) {
	orderID := kernel.NewUUID()

	var gotMethod, gotPath string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	err := client.Start(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/orders/"+orderID.String()+"/session/start", gotPath)
}

func TestClient_Start_ServerFailure_ReturnsServerError(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.Start(context.Background(), kernel.NewUUID())

	var serverErr *stabilityclient.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
}

func TestClient_GetConfig_DecodesConfiguration(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/stability-config")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"maxExcursionSeconds": 1800, "minTemp": 2.0, "maxTemp": 8.0}`))
	})

	config, err := client.GetConfig(context.Background(), kernel.NewUUID())
	require.NoError(t, err)

	assert.Equal(t, 1800, config.MaxExcursionSeconds())
	assert.InDelta(t, 2.0, config.MinTempC(), 1e-9)
	assert.InDelta(t, 8.0, config.MaxTempC(), 1e-9)
}

func TestClient_GetConfig_NotFound_ReturnsObjectNotFoundError(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no config", http.StatusNotFound)
	})

	_, err := client.GetConfig(context.Background(), kernel.NewUUID())

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestClient_GetConfig_InvalidPayload_ReturnsServerError(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"maxExcursionSeconds":`))
	})

	_, err := client.GetConfig(context.Background(), kernel.NewUUID())

	var serverErr *stabilityclient.ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestClient_Update_SendsSampleAndDecodesVerdict(t *testing.T) {
	orderID := kernel.NewUUID()
	position, err := kernel.NewGeoPoint(41.40, 2.17)
	require.NoError(t, err)

	var gotBody map[string]any
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/"+orderID.String()+"/session/update", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"timerStarted": true, "remainingSeconds": 730}`))
	})

	update, err := client.Update(context.Background(), orderID, 9.4, position)
	require.NoError(t, err)

	assert.InDelta(t, 9.4, gotBody["temp"].(float64), 1e-9)
	assert.InDelta(t, 41.40, gotBody["lat"].(float64), 1e-9)
	assert.InDelta(t, 2.17, gotBody["lon"].(float64), 1e-9)

	assert.Equal(t, stability.AlertNone, update.Alert)
	assert.True(t, update.TimerStarted)
	require.NotNil(t, update.RemainingSeconds)
	assert.Equal(t, 730, *update.RemainingSeconds)
}

func TestClient_Update_AlertPassesThroughVerbatim(t *testing.T) {
	position, err := kernel.NewGeoPoint(41.40, 2.17)
	require.NoError(t, err)

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alert": "MAX_EXCURSION_EXCEEDED"}`))
	})

	update, err := client.Update(context.Background(), kernel.NewUUID(), 12.0, position)
	require.NoError(t, err)

	assert.Equal(t, stability.AlertMaxExcursionExceeded, update.Alert)
	assert.Nil(t, update.RemainingSeconds)
}

func TestClient_Update_ServerUnreachable_ReturnsServerError(t *testing.T) {
	position, err := kernel.NewGeoPoint(41.40, 2.17)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := stabilityclient.NewClient(server.URL, time.Second)
	require.NoError(t, err)
	server.Close()

	_, err = client.Update(context.Background(), kernel.NewUUID(), 5.0, position)

	var serverErr *stabilityclient.ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestClient_Update_SlowServer_TimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client, err := stabilityclient.NewClient(server.URL, 50*time.Millisecond)
	require.NoError(t, err)

	position, err := kernel.NewGeoPoint(41.40, 2.17)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Update(context.Background(), kernel.NewUUID(), 5.0, position)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
