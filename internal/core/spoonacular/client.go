// Package spoonacular 封裝外部食譜搜尋 API。
package spoonacular

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const serviceName = "spoonacular"

// APIError 外部 API 回傳非成功狀態
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spoonacular %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client Spoonacular API 客戶端
type Client struct {
	client *resty.Client
}

// NewClient 創建 Spoonacular 客戶端
func NewClient(cfg config.SpoonacularConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("apiKey", cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{client: client}
}

// FindByIngredients 依食材搜尋食譜
func (c *Client) FindByIngredients(ctx context.Context, ingredients []string, number int) ([]Recipe, error) {
	var recipes []Recipe
	err := c.get(ctx, "/recipes/findByIngredients", map[string]string{
		"ingredients": strings.Join(ingredients, ","),
		"number":      strconv.Itoa(number),
	}, &recipes)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// ComplexSearch 帶過濾條件的搜尋，過濾由外部 API 執行
func (c *Client) ComplexSearch(ctx context.Context, params ComplexSearchParams) ([]Recipe, error) {
	query := map[string]string{
		"includeIngredients": strings.Join(params.IncludeIngredients, ","),
		"number":             strconv.Itoa(params.Number),
		"fillIngredients":    "true",
	}
	if len(params.Intolerances) > 0 {
		query["intolerances"] = strings.Join(params.Intolerances, ",")
		query["excludeIngredients"] = strings.Join(params.Intolerances, ",")
	}
	if params.Cuisine != "" {
		query["cuisine"] = params.Cuisine
	}
	if params.Diet != "" {
		query["diet"] = params.Diet
	}

	var resp complexSearchResponse
	if err := c.get(ctx, "/recipes/complexSearch", query, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// RecipeInformation 取得單一食譜詳細資料
func (c *Client) RecipeInformation(ctx context.Context, id int) (*RecipeInformation, error) {
	var info RecipeInformation
	path := fmt.Sprintf("/recipes/%d/information", id)
	if err := c.get(ctx, path, map[string]string{"includeNutrition": "false"}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Substitutes 取得替代食材
func (c *Client) Substitutes(ctx context.Context, ingredientName string) ([]string, error) {
	var resp substitutesResponse
	err := c.get(ctx, "/food/ingredients/substitutes", map[string]string{
		"ingredientName": ingredientName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Substitutes, nil
}

// get 發送 GET 請求並解析 JSON
func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	start := time.Now()
	endpoint := endpointLabel(path)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)

	duration := time.Since(start)
	if err != nil {
		err = fmt.Errorf("failed to send request to spoonacular: %w", err)
		observe(endpoint, "error", duration)
		common.LogExternalCall(serviceName, endpoint, duration, err)
		return err
	}

	if resp.StatusCode() != http.StatusOK {
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: resp.String()}
		observe(endpoint, strconv.Itoa(resp.StatusCode()), duration)
		common.LogExternalCall(serviceName, endpoint, duration, apiErr)
		return apiErr
	}

	if err := common.ParseJSONBytes(resp.Body(), out); err != nil {
		err = fmt.Errorf("failed to parse spoonacular response: %w", err)
		observe(endpoint, "malformed", duration)
		common.LogExternalCall(serviceName, endpoint, duration, err)
		return err
	}

	observe(endpoint, "ok", duration)
	common.LogExternalCall(serviceName, endpoint, duration, nil)
	return nil
}

func observe(endpoint, outcome string, d time.Duration) {
	metrics.ExternalRequestDuration.WithLabelValues(serviceName, endpoint, outcome).Observe(d.Seconds())
}

// endpointLabel 將路徑中的食譜 ID 去除，避免 label 基數過高
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/recipes/") && strings.HasSuffix(path, "/information") {
		return "/recipes/{id}/information"
	}
	return path
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
