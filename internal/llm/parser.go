package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

var responseValidator = newResponseValidator()

func newResponseValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// parseCategoryResponse decodes and validates the model's JSON answer.
// Every failure wraps common.ErrCategorizationFailed and is not retryable.
func parseCategoryResponse(content string) (CategoryResponse, error) {
	content = cleanMarkdownWrapper(content)

	var resp CategoryResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return CategoryResponse{}, common.Permanent(
			fmt.Errorf("%w: failed to parse JSON response: %w", common.ErrCategorizationFailed, err))
	}

	resp.Category = strings.TrimSpace(resp.Category)
	if err := responseValidator.Struct(resp); err != nil {
		return CategoryResponse{}, common.Permanent(
			fmt.Errorf("%w: response does not match schema: %w", common.ErrCategorizationFailed, err))
	}

	return resp, nil
}

// cleanMarkdownWrapper strips a ```json fence some models wrap answers in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
