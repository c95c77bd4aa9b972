package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/benkyo-app/benkyo/internal/inference"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

func (client *Client) withRetry(ctx context.Context, call func() error) error {
	return retry.Do(
		func() error {
			if err := call(); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// CheckSentence implements the inference.Client interface
func (client *Client) CheckSentence(
	ctx context.Context,
	params inference.CheckSentenceRequest,
) (inference.CheckSentenceResponse, error) {
	var result inference.CheckSentenceResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.checkSentence(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.CheckSentenceResponse{}, err
	}
	return result, nil
}

func (client *Client) checkSentence(
	ctx context.Context,
	params inference.CheckSentenceRequest,
) (inference.CheckSentenceResponse, error) {
	systemPrompt := `You are a Japanese teacher grading one sentence a learner wrote to practice a grammar structure.

Judge whether the sentence is grammatically correct AND uses the target structure naturally.

OUTPUT FORMAT (JSON only):
{
  "correct": true | false,
  "feedback": "<one or two sentences on what is right or wrong>",
  "suggestions": ["<specific fix>", ...],
  "corrected_sentence": "<the corrected sentence, only when correct is false>"
}

Rules:
- "suggestions" lists concrete grammar, vocabulary or word-order fixes; keep it empty when the sentence is correct.
- Do NOT include any text outside the JSON.`

	structureInfo := ""
	if params.Structure != "" {
		structureInfo = fmt.Sprintf("\nTarget structure: %s", params.Structure)
	}
	if params.Meaning != "" {
		structureInfo += fmt.Sprintf("\nStructure meaning: %s", params.Meaning)
	}

	userMessage := fmt.Sprintf("Sentence: %s%s\n\nGrade this sentence.", params.Sentence, structureInfo)

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.1,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userMessage},
		},
	}

	var decoded inference.CheckSentenceResponse
	if err := client.chatCompletion(ctx, requestBody, &decoded); err != nil {
		return inference.CheckSentenceResponse{}, err
	}
	return decoded, nil
}

// CheckDiary implements the inference.Client interface
func (client *Client) CheckDiary(
	ctx context.Context,
	params inference.CheckDiaryRequest,
) (inference.CheckDiaryResponse, error) {
	var result inference.CheckDiaryResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.checkDiary(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.CheckDiaryResponse{}, err
	}
	return result, nil
}

func (client *Client) checkDiary(
	ctx context.Context,
	params inference.CheckDiaryRequest,
) (inference.CheckDiaryResponse, error) {
	systemPrompt := `You are a Japanese teacher correcting a learner's diary entry.

Go through the entry line by line and point out grammar, vocabulary and naturalness problems. Then give overall writing advice and a score.

OUTPUT FORMAT (JSON only):
{
  "errors": [
    {"line": <1-based line number>, "type": "grammar" | "vocabulary" | "naturalness", "message": "<what is wrong and how to fix it>"}
  ],
  "suggestions": ["<overall writing advice>", ...],
  "overall_score": <0-100>
}

Rules:
- An entry with no problems gets an empty errors list and a score of 90 or above.
- Keep each message short enough to read next to the original line.
- Do NOT include any text outside the JSON.`

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.2,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: params.Content},
		},
	}

	var decoded inference.CheckDiaryResponse
	if err := client.chatCompletion(ctx, requestBody, &decoded); err != nil {
		return inference.CheckDiaryResponse{}, err
	}
	return decoded, nil
}

// SuggestTopic implements the inference.Client interface
func (client *Client) SuggestTopic(ctx context.Context) (inference.SuggestTopicResponse, error) {
	var result inference.SuggestTopicResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.suggestTopic(ctx)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.SuggestTopicResponse{}, err
	}
	return result, nil
}

func (client *Client) suggestTopic(ctx context.Context) (inference.SuggestTopicResponse, error) {
	systemPrompt := `You are a Japanese teacher suggesting a diary topic for today's writing practice.

Pick one everyday topic an intermediate learner can write a short diary entry about, give guiding questions in Japanese, and a fill-in-the-blank template sentence.

OUTPUT FORMAT (JSON only):
{
  "topic": "<short topic in Japanese>",
  "questions": ["<guiding question in Japanese>", ...],
  "template": "<one sentence with ___ blanks>"
}

Rules:
- Three to five guiding questions.
- Do NOT include any text outside the JSON.`

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: "Suggest a topic for today's diary."},
		},
	}

	var decoded inference.SuggestTopicResponse
	if err := client.chatCompletion(ctx, requestBody, &decoded); err != nil {
		return inference.SuggestTopicResponse{}, err
	}
	return decoded, nil
}

// AnalyzeErrors implements the inference.Client interface
func (client *Client) AnalyzeErrors(
	ctx context.Context,
	params inference.AnalyzeErrorsRequest,
) (inference.AnalyzeErrorsResponse, error) {
	var result inference.AnalyzeErrorsResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.analyzeErrors(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.AnalyzeErrorsResponse{}, err
	}
	return result, nil
}

func (client *Client) analyzeErrors(
	ctx context.Context,
	params inference.AnalyzeErrorsRequest,
) (inference.AnalyzeErrorsResponse, error) {
	if len(params.Errors) == 0 {
		return inference.AnalyzeErrorsResponse{}, nil
	}

	systemPrompt := `You are a Japanese teacher reviewing every mistake a learner made today across grammar, vocabulary, kanji and contrast quizzes.

GOAL
Find the patterns behind the mistakes, not just the individual errors. Group related mistakes into weak points and give the learner concrete study advice.

OUTPUT FORMAT (JSON only):
{
  "summary": "<two or three sentences describing today's overall picture>",
  "weak_points": [
    {"topic": "<short name of the problem area>", "detail": "<what goes wrong and how to tell the confused forms apart>"}
  ],
  "suggestions": ["<concrete study action>", ...]
}

Rules:
- Order weak_points from most to least frequent.
- A single isolated mistake is not a weak point; fold it into the summary instead.
- Do NOT include any text outside the JSON.`

	userJSON, err := json.Marshal(params.Errors)
	if err != nil {
		return inference.AnalyzeErrorsResponse{}, fmt.Errorf("json.Marshal(errors) > %w", err)
	}

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.3,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: string(userJSON)},
		},
	}

	var decoded inference.AnalyzeErrorsResponse
	if err := client.chatCompletion(ctx, requestBody, &decoded); err != nil {
		return inference.AnalyzeErrorsResponse{}, err
	}
	return decoded, nil
}

func (client *Client) chatCompletion(ctx context.Context, requestBody ChatCompletionRequest, out any) error {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)

	if err := json.NewDecoder(strings.NewReader(content)).Decode(out); err != nil {
		return fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	return nil
}

var _ inference.Client = (*Client)(nil)
