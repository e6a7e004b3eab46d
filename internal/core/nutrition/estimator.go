package nutrition

import (
	"context"
	"fmt"
	"net/http"

	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Estimator resolves a food name to a per-gram macro profile by remote call.
type Estimator interface {
	Estimate(ctx context.Context, foodName string) (common.PerGram, error)
}

// RemoteEstimator is the HTTP implementation of Estimator against the legacy
// name-based estimation endpoint.
type RemoteEstimator struct {
	cfg    *config.Config
	client *resty.Client
}

// NewRemoteEstimator creates the estimator client.
func NewRemoteEstimator(cfg *config.Config) *RemoteEstimator {
	client := resty.New().
		SetBaseURL(cfg.Estimator.BaseURL).
		SetTimeout(cfg.Estimator.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Estimator.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.Estimator.APIKey)
	}
	return &RemoteEstimator{cfg: cfg, client: client}
}

type estimateRequest struct {
	FoodName         string `json:"food_name"`
	AmountPercentage int    `json:"amount_percentage"`
}

type estimateResponse struct {
	Nutrition struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
		Fiber    float64 `json:"fiber"`
		Sugar    float64 `json:"sugar"`
		Sodium   float64 `json:"sodium"`
	} `json:"nutrition"`
}

// Estimate requests a per-100g estimate for foodName and normalizes it to a
// 1-gram basis. Negative upstream values are clamped to zero.
func (e *RemoteEstimator) Estimate(ctx context.Context, foodName string) (common.PerGram, error) {
	req := estimateRequest{
		FoodName:         foodName,
		AmountPercentage: 100,
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/nutrition/estimate")
	if err != nil {
		return common.PerGram{}, fmt.Errorf("failed to call estimator: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("estimator returned non-OK status",
			zap.Int("status", resp.StatusCode()),
			zap.String("food", foodName),
		)
		return common.PerGram{}, common.ErrEstimatorUnavailable
	}

	var body estimateResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return common.PerGram{}, fmt.Errorf("failed to parse estimator response: %w", err)
	}
	if body.Nutrition.Calories <= 0 {
		return common.PerGram{}, fmt.Errorf("estimator returned no calories for %q", foodName)
	}

	return common.PerGram{
		Kcal:    clampNonNegative(body.Nutrition.Calories / 100),
		Protein: clampNonNegative(body.Nutrition.Protein / 100),
		Carbs:   clampNonNegative(body.Nutrition.Carbs / 100),
		Fat:     clampNonNegative(body.Nutrition.Fat / 100),
		Fiber:   clampNonNegative(body.Nutrition.Fiber / 100),
		Sugar:   clampNonNegative(body.Nutrition.Sugar / 100),
		Sodium:  clampNonNegative(body.Nutrition.Sodium / 100),
	}, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
