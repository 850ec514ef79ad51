package network_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storagestats/gcs-stats/models/service"
	"github.com/storagestats/gcs-stats/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueObject(t *testing.T) {
	var topic string
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topic = r.URL.Query().Get("topic")
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := network.NewNSQClient(server.URL)
	err := client.EnqueueObject("storage_logs", "bucket_storage_2020_01_01_08_00_00_abc_v0")
	require.Nil(t, err)
	assert.Equal(t, "storage_logs", topic)

	notification, err := service.NotificationFromJSON(body)
	require.Nil(t, err)
	assert.Equal(t, "bucket_storage_2020_01_01_08_00_00_abc_v0", notification.ObjectID())
}

func TestEnqueueObjectBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("TOPIC_NOT_FOUND"))
	}))
	defer server.Close()

	err := network.NewNSQClient(server.URL).EnqueueObject("nope", "x_v0")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "TOPIC_NOT_FOUND")
}

func TestEnqueueObjectNoServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	err := network.NewNSQClient(url).EnqueueObject("topic", "x_v0")
	assert.NotNil(t, err)
}
