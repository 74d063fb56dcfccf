package fdclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCallbackFailed = errors.New("callback failed")

func albumServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]string{
			"title": "Final",
			"slug":  "final",
			"type":  "album",
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates and starts client", func(t *testing.T) {
		t.Parallel()

		client, err := fdclient.New(context.Background(), fdapi.DefaultSettings("https://api.example.com"))
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "https://api.example.com", client.Settings().BaseURL)
		require.NoError(t, client.Close())
	})

	t.Run("rejects missing base URL", func(t *testing.T) {
		t.Parallel()

		_, err := fdclient.New(context.Background(), fdapi.Settings{})
		require.ErrorIs(t, err, fdapi.ErrBaseURLRequired)
	})

	t.Run("events without NATS URL fail to start", func(t *testing.T) {
		t.Parallel()

		settings := fdapi.DefaultSettings("https://api.example.com")
		settings.Features.Events = true

		_, err := fdclient.New(context.Background(), settings, fdclient.WithNATSEvents("", "", ""))
		require.Error(t, err)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := fdclient.NewWithEndpoint(context.Background(), "api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", client.Settings().BaseURL)
	require.NoError(t, client.Close())
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := fdclient.NewWithAPIKey(context.Background(), "https://api.example.com", "secret")
	require.NoError(t, err)
	assert.True(t, client.Settings().HasAPIKey())
	assert.Equal(t, "***", client.Settings().MaskedAPIKey())
	require.NoError(t, client.Close())
}

func TestWith(t *testing.T) {
	t.Parallel()

	t.Run("runs callback and closes", func(t *testing.T) {
		t.Parallel()

		server := albumServer(t)

		var captured fdapi.Client

		err := fdclient.With(context.Background(), fdapi.DefaultSettings(server.URL), func(client fdapi.Client) error {
			captured = client

			item, err := client.FetchItem(context.Background(), fdapi.NewItemRequest("albums", "", "final"))
			if err != nil {
				return err
			}

			assert.Equal(t, "Final", item.Title)

			return nil
		})
		require.NoError(t, err)

		_, err = captured.FetchItem(context.Background(), fdapi.NewItemRequest("albums", "", "final"))
		require.Error(t, err)

		fdErr, ok := fdapi.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fdapi.CodeClientClosed, fdErr.Code)
	})

	t.Run("closes on callback error", func(t *testing.T) {
		t.Parallel()

		server := albumServer(t)

		var captured fdapi.Client

		err := fdclient.With(context.Background(), fdapi.DefaultSettings(server.URL), func(client fdapi.Client) error {
			captured = client

			return errCallbackFailed
		})
		require.ErrorIs(t, err, errCallbackFailed)

		_, err = captured.HealthCheck(context.Background())
		require.Error(t, err)
	})
}
