package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"github.com/benkyo-app/benkyo/internal/inference"
)

func chatResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient:       resty.New().SetBaseURL(serverURL),
		model:            "gpt-4o-mini",
		maxRetryAttempts: 1,
	}
}

func TestClient_CheckSentence(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.CheckSentenceRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse    inference.CheckSentenceResponse
		wantError       bool
		wantErrorString string
	}{
		{
			name: "correct sentence",
			request: inference.CheckSentenceRequest{
				Sentence:  "寝坊したばかりに遅刻しました。",
				Structure: "〜ばかりに",
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Contains(t, reqBody.Messages[1].Content, "〜ばかりに")

				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
					`{"correct": true, "feedback": "Natural use of the structure."}`,
				)))
			},
			wantResponse: inference.CheckSentenceResponse{
				Correct:  true,
				Feedback: "Natural use of the structure.",
			},
		},
		{
			name: "incorrect sentence with suggestions",
			request: inference.CheckSentenceRequest{
				Sentence: "私は朝ごはんに食べる。",
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
					`{"correct": false, "feedback": "Particle error.", "suggestions": ["Use を for the direct object"], "corrected_sentence": "私は朝ごはんを食べる。"}`,
				)))
			},
			wantResponse: inference.CheckSentenceResponse{
				Correct:           false,
				Feedback:          "Particle error.",
				Suggestions:       []string{"Use を for the direct object"},
				CorrectedSentence: "私は朝ごはんを食べる。",
			},
		},
		{
			name:    "non-JSON content",
			request: inference.CheckSentenceRequest{Sentence: "test"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse("sorry, I cannot help")))
			},
			wantError:       true,
			wantErrorString: "json.Unmarshal",
		},
		{
			name:    "empty choices",
			request: inference.CheckSentenceRequest{Sentence: "test"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(ChatCompletionResponse{ID: "chatcmpl-1"}))
			},
			wantError:       true,
			wantErrorString: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			got, err := client.CheckSentence(context.Background(), tt.request)

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResponse, got)
		})
	}
}

func TestClient_CheckDiary(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.CheckDiaryRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse    inference.CheckDiaryResponse
		wantError       bool
		wantErrorString string
	}{
		{
			name:    "entry with errors",
			request: inference.CheckDiaryRequest{Content: "今日は映画を見た。\nとてもうまいでした。"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				require.Len(t, reqBody.Messages, 2)
				assert.Contains(t, reqBody.Messages[1].Content, "うまいでした")

				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
					`{"errors": [{"line": 2, "type": "vocabulary", "message": "Use 面白かった instead of うまいでした for a film"}], "suggestions": ["Try linking the two sentences with ので"], "overall_score": 72}`,
				)))
			},
			wantResponse: inference.CheckDiaryResponse{
				Errors: []inference.DiaryError{
					{Line: 2, Type: "vocabulary", Message: "Use 面白かった instead of うまいでした for a film"},
				},
				Suggestions:  []string{"Try linking the two sentences with ので"},
				OverallScore: 72,
			},
		},
		{
			name:    "clean entry",
			request: inference.CheckDiaryRequest{Content: "今日は友達と図書館で勉強しました。"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
					`{"errors": [], "suggestions": [], "overall_score": 95}`,
				)))
			},
			wantResponse: inference.CheckDiaryResponse{OverallScore: 95, Errors: []inference.DiaryError{}, Suggestions: []string{}},
		},
		{
			name:    "non-JSON content",
			request: inference.CheckDiaryRequest{Content: "test"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse("I cannot grade this")))
			},
			wantError:       true,
			wantErrorString: "json.Unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			got, err := client.CheckDiary(context.Background(), tt.request)

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResponse, got)
		})
	}
}

func TestClient_SuggestTopic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
			`{"topic": "今日の出来事", "questions": ["朝ごはんに何を食べましたか？", "今日はどこに行きましたか？"], "template": "今日は___に行って、___をしました。"}`,
		)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.SuggestTopic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "今日の出来事", got.Topic)
	require.Len(t, got.Questions, 2)
	assert.Contains(t, got.Template, "___")
}

func TestClient_AnalyzeErrors(t *testing.T) {
	request := inference.AnalyzeErrorsRequest{
		Errors: []inference.ReviewError{
			{
				Category:      "grammar",
				Question:      "寝坊した（　）遅刻した",
				UserAnswer:    "せいで",
				CorrectAnswer: "ばかりに",
			},
			{
				Category:      "grammar",
				Question:      "練習した（　）上手になった",
				UserAnswer:    "ばかりに",
				CorrectAnswer: "おかげで",
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		var userMessage string
		for _, msg := range reqBody.Messages {
			if msg.Role == RoleUser {
				userMessage = msg.Content
				break
			}
		}
		assert.Contains(t, userMessage, "ばかりに")

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
			`{"summary": "Both mistakes confuse cause-and-effect structures.", "weak_points": [{"topic": "cause expressions", "detail": "ばかりに is for regret, おかげで for good outcomes, せいで for blame"}], "suggestions": ["Drill ばかりに/おかげで/せいで side by side"]}`,
		)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.AnalyzeErrors(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "Both mistakes confuse cause-and-effect structures.", got.Summary)
	require.Len(t, got.WeakPoints, 1)
	assert.Equal(t, "cause expressions", got.WeakPoints[0].Topic)
	assert.Len(t, got.Suggestions, 1)
}

func TestClient_AnalyzeErrors_EmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.AnalyzeErrors(context.Background(), inference.AnalyzeErrorsRequest{})
	require.NoError(t, err)
	assert.Equal(t, inference.AnalyzeErrorsResponse{}, got)
}

func TestClient_AnalyzeErrors_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(chatResponse(
			`{"summary": "ok", "weak_points": []}`,
		)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.AnalyzeErrors(context.Background(), inference.AnalyzeErrorsRequest{
		Errors: []inference.ReviewError{{Category: "grammar", Question: "q"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Summary)
	assert.Equal(t, int32(2), calls.Load())
}
