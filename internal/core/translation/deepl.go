package translation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Provider 外部翻譯服務
type Provider interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// ProviderError 翻譯服務回傳非成功狀態
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translation provider returned status %d: %s", e.StatusCode, e.Body)
}

// DeepLClient DeepL API 客戶端
type DeepLClient struct {
	client *resty.Client
	apiKey string
	url    string
}

// deeplResponse DeepL 回應結構
type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// NewDeepLClient 創建 DeepL 客戶端
func NewDeepLClient(cfg config.DeepLConfig) *DeepLClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &DeepLClient{
		client: client,
		apiKey: cfg.APIKey,
		url:    cfg.URL,
	}
}

// Translate 翻譯單一文字
func (c *DeepLClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.ExternalRequestDuration.WithLabelValues("deepl", "translate", outcome).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"auth_key":    c.apiKey,
			"text":        text,
			"target_lang": targetLang,
		}).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("failed to send request to DeepL: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &ProviderError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var result deeplResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse DeepL response: %w", err)
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("no translations in DeepL response")
	}

	outcome = "ok"
	return result.Translations[0].Text, nil
}

// Close 關閉客戶端
func (c *DeepLClient) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
