package service

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/model"
	"algolearn_backend/pkg/logger"
	"algolearn_backend/pkg/monitoring"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EvaluatorClient 外部 AI 服务的统一客户端：代码评测、反馈生成、
// 学习者聚类、画像变更通知。服务内部算法不在本仓库范围内，这里只
// 负责调用、超时、有限重试，以及把松散的响应归一化成内部类型。
type EvaluatorClient struct {
	cfg        config.EvaluatorConfig
	httpClient *http.Client
}

func NewEvaluatorClient(cfg config.EvaluatorConfig) *EvaluatorClient {
	return &EvaluatorClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// EvaluationResult 归一化后的评测结果。所有可选字段都有默认值，
// 内部逻辑不需要关心评测服务这次返回的是哪种形态。
type EvaluationResult struct {
	Success       bool
	Score         int
	TestResults   []model.TestCaseResult
	ExecutionTime *float64
	MemoryUsed    *int
	Error         string
}

// evaluateResponse 评测服务的原始响应，字段全部可缺省
type evaluateResponse struct {
	Success       *bool                  `json:"success"`
	Score         *float64               `json:"score"`
	TestResults   []model.TestCaseResult `json:"test_results"`
	ExecutionTime *float64               `json:"execution_time"`
	MemoryUsed    *int                   `json:"memory_used"`
	Error         string                 `json:"error"`
}

// ClusterGroup 聚类服务返回的一个学习者分组
type ClusterGroup struct {
	Size            int             `json:"size"`
	Characteristics json.RawMessage `json:"characteristics,omitempty"`
	Students        json.RawMessage `json:"students,omitempty"`
}

type ClusterResult struct {
	Clusters        []ClusterGroup `json:"clusters"`
	OptimalK        *int           `json:"optimal_k,omitempty"`
	SilhouetteScore *float64       `json:"silhouette_score,omitempty"`
}

// Evaluate 评测一份提交。网络失败/非2xx（重试耗尽后）返回错误，
// 由提交流程降级处理；响应格式残缺时不报错，归一化成默认值。
func (c *EvaluatorClient) Evaluate(ctx context.Context, code string, testCases json.RawMessage, language string) (*EvaluationResult, error) {
	if language == "" {
		language = c.cfg.Language
	}
	if len(testCases) == 0 {
		testCases = json.RawMessage("[]")
	}

	payload := map[string]interface{}{
		"code":       code,
		"test_cases": testCases,
		"language":   language,
	}

	body, err := c.postWithRetry(ctx, "/evaluate", payload)
	if err != nil {
		monitoring.EvaluatorCalls.WithLabelValues("evaluate", "error").Inc()
		return nil, err
	}
	monitoring.EvaluatorCalls.WithLabelValues("evaluate", "ok").Inc()

	var raw evaluateResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		// 响应不是合法JSON：降级为零分结果而不是向上抛解析错误
		logger.Log.Warn("evaluator returned malformed payload", zap.Error(err))
		return &EvaluationResult{Error: "malformed evaluator response"}, nil
	}

	result := &EvaluationResult{
		TestResults:   raw.TestResults,
		ExecutionTime: raw.ExecutionTime,
		MemoryUsed:    raw.MemoryUsed,
		Error:         raw.Error,
	}
	if raw.Success != nil {
		result.Success = *raw.Success
	}
	if raw.Score != nil {
		result.Score = int(*raw.Score)
	}
	if result.TestResults == nil {
		result.TestResults = []model.TestCaseResult{}
	}
	return result, nil
}

// Recommend 为一次提交生成AI反馈，响应对本服务是不透明的JSON
func (c *EvaluatorClient) Recommend(ctx context.Context, attemptID uint, code string, testResults json.RawMessage, errorMessage string) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"attempt_id":    attemptID,
		"code":          code,
		"test_results":  testResults,
		"error_message": errorMessage,
	}

	body, err := c.postWithRetry(ctx, "/recommend", payload)
	if err != nil {
		monitoring.EvaluatorCalls.WithLabelValues("recommend", "error").Inc()
		return nil, err
	}
	monitoring.EvaluatorCalls.WithLabelValues("recommend", "ok").Inc()

	if !json.Valid(body) {
		return nil, fmt.Errorf("feedback service returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

// Cluster 触发学习者聚类并转发结果，算法细节完全在外部服务
func (c *EvaluatorClient) Cluster(ctx context.Context, minClusters, maxClusters int) (*ClusterResult, error) {
	payload := map[string]interface{}{
		"min_clusters": minClusters,
		"max_clusters": maxClusters,
	}

	body, err := c.postWithRetry(ctx, "/cluster", payload)
	if err != nil {
		monitoring.EvaluatorCalls.WithLabelValues("cluster", "error").Inc()
		return nil, err
	}
	monitoring.EvaluatorCalls.WithLabelValues("cluster", "ok").Inc()

	var result ClusterResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("malformed clustering response: %w", err)
	}
	if result.Clusters == nil {
		result.Clusters = []ClusterGroup{}
	}
	return &result, nil
}

// NotifyProfileUpdate 画像变更后通知外部画像服务，尽力而为
func (c *EvaluatorClient) NotifyProfileUpdate(ctx context.Context, userID uint, attempt *model.Attempt, challenge *model.Challenge) {
	payload := map[string]interface{}{
		"user_id":        userID,
		"attempt_data":   attempt,
		"challenge_data": challenge,
	}

	if _, err := c.post(ctx, "/update_profile", payload); err != nil {
		logger.Log.Warn("profile update notification failed",
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}

func (c *EvaluatorClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

// postWithRetry 网络错误或5xx时有限重试，退避间隔逐次加长。
// 4xx不重试：请求本身有问题，重试不会有不同结果。
func (c *EvaluatorClient) postWithRetry(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, err := c.post(ctx, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && se.status < 500 {
			break
		}
	}
	return nil, lastErr
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("evaluation service error (status %d): %s", e.status, e.body)
}
