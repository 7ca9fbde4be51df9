package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestPutSubscription_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env, http.MethodPut, "/api/subscriptions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestPutSubscription_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "pat@example.com")

	w := doJSON(t, env, http.MethodPut, "/api/subscriptions", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "pat@example.com")

	put := map[string]any{
		"endpoint": "E",
		"keys":     map[string]string{"p256dh": "A", "auth": "B"},
	}
	w := doJSON(t, env, http.MethodPut, "/api/subscriptions", token, put)
	require.Equal(t, http.StatusCreated, w.Code)

	// Round-trip: exactly one subscription with the registered keys.
	w = doJSON(t, env, http.MethodGet, "/api/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Subscriptions []struct {
			Endpoint string `json:"endpoint"`
			P256DH   string `json:"p256dh"`
			Auth     string `json:"auth"`
		} `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, "E", resp.Subscriptions[0].Endpoint)
	assert.Equal(t, "A", resp.Subscriptions[0].P256DH)
	assert.Equal(t, "B", resp.Subscriptions[0].Auth)

	// Re-registering the same endpoint updates in place.
	put["keys"] = map[string]string{"p256dh": "A2", "auth": "B2"}
	w = doJSON(t, env, http.MethodPut, "/api/subscriptions", token, put)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Subscriptions, 1, "re-registration must not duplicate the endpoint")
	assert.Equal(t, "A2", resp.Subscriptions[0].P256DH)
	assert.Equal(t, "B2", resp.Subscriptions[0].Auth)

	// Unsubscribe removes the row.
	w = doJSON(t, env, http.MethodDelete, "/api/subscriptions", token, map[string]string{"endpoint": "E"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Subscriptions)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env, http.MethodGet, "/api/vapid_public_key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicKey":"test_public"}`, w.Body.String())
}
