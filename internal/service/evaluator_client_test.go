package service

import (
	"algolearn_backend/internal/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, maxRetries int) *EvaluatorClient {
	return NewEvaluatorClient(config.EvaluatorConfig{
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
		MaxRetries:     maxRetries,
		Language:       "python",
	})
}

func TestEvaluateNormalizesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/evaluate", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "print(1)", payload["code"])
		assert.Equal(t, "python", payload["language"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"score": 100,
			"test_results": [
				{"passed": true},
				{"passed": false, "error_line": 3, "message": "IndexError"}
			],
			"execution_time": 12.5
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	result, err := client.Evaluate(context.Background(), "print(1)", nil, "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 100, result.Score)
	require.Len(t, result.TestResults, 2)
	assert.True(t, result.TestResults[0].Passed)
	require.NotNil(t, result.TestResults[1].ErrorLine)
	assert.Equal(t, 3, *result.TestResults[1].ErrorLine)
	assert.Equal(t, "IndexError", result.TestResults[1].Message)
	require.NotNil(t, result.ExecutionTime)
	assert.Equal(t, 12.5, *result.ExecutionTime)
}

func TestEvaluateDefaultsForSparseResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	result, err := client.Evaluate(context.Background(), "code", nil, "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Score)
	assert.NotNil(t, result.TestResults)
	assert.Empty(t, result.TestResults)
}

func TestEvaluateMalformedPayloadDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	result, err := client.Evaluate(context.Background(), "code", nil, "")

	// 格式残缺不算调用失败，降级为零分结果
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Score)
	assert.NotEmpty(t, result.Error)
}

func TestEvaluateRetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": true, "score": 50}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	result, err := client.Evaluate(context.Background(), "code", nil, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEvaluateNoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Evaluate(context.Background(), "code", nil, "")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx不应重试")
}

func TestEvaluateFailsAfterRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	_, err := client.Evaluate(context.Background(), "code", nil, "")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRecommendReturnsOpaqueJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommend", r.URL.Path)
		w.Write([]byte(`{"hints": ["检查数组边界"], "next_steps": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	feedback, err := client.Recommend(context.Background(), 1, "code", nil, "")
	require.NoError(t, err)
	assert.True(t, json.Valid(feedback))
}

func TestRecommendRejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`oops`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Recommend(context.Background(), 1, "code", nil, "")
	require.Error(t, err)
}

func TestClusterForwardsGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cluster", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(3), payload["min_clusters"])

		w.Write([]byte(`{"clusters": [{"size": 4}, {"size": 7}], "optimal_k": 2}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	result, err := client.Cluster(context.Background(), 3, 6)
	require.NoError(t, err)
	require.Len(t, result.Clusters, 2)
	assert.Equal(t, 4, result.Clusters[0].Size)
	require.NotNil(t, result.OptimalK)
	assert.Equal(t, 2, *result.OptimalK)
}
