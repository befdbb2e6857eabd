package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Post_SendsUserIDAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/start", r.URL.Path)
		assert.Equal(t, "42", r.Header.Get(userIDHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["user_id"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"session_id":"admin_01j"}}`))
	}))
	defer srv.Close()

	client := NewAPIClientWithConfig("42", srv.URL)
	resp, err := client.Post(context.Background(), "/chat/start", map[string]string{"user_id": "42"})
	require.NoError(t, err)

	var start StartResponse
	require.NoError(t, resp.Decode(&start))
	assert.Equal(t, "admin_01j", start.SessionID)
}

func TestAPIClient_Get_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"admin access required"}`))
	}))
	defer srv.Close()

	client := NewAPIClientWithConfig("7", srv.URL)
	_, err := client.Get(context.Background(), "/admin/dashboard")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "admin access required", apiErr.Message)
	assert.Equal(t, "API error (403): admin access required", err.Error())
}

func TestAPIClient_Get_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewAPIClientWithConfig("7", srv.URL)
	_, err := client.Get(context.Background(), "/admin/dashboard")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad gateway")
}

func TestAPIResponse_Decode_Empty(t *testing.T) {
	var v map[string]any
	err := (&APIResponse{}).Decode(&v)
	assert.EqualError(t, err, "empty response data")
}

func TestNewAPIClientWithCmd_Cascade(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		useTempConfig(t)
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().String("user-id", "", "")
		cmd.Flags().String("api-url", "", "")
		require.NoError(t, cmd.ParseFlags([]string{"--user-id", "9", "--api-url", "http://api"}))

		client, err := NewAPIClientWithCmd(cmd)
		require.NoError(t, err)
		assert.Equal(t, "9", client.userID)
		assert.Equal(t, "http://api", client.baseURL)
	})

	t.Run("global config with default url", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{UserID: "11"}))

		client, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, "11", client.userID)
		assert.Equal(t, defaultAPIURL, client.baseURL)
	})

	t.Run("missing user", func(t *testing.T) {
		useTempConfig(t)

		_, err := NewAPIClientWithCmd(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), envUserID)
	})
}
