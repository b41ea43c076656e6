package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/platelog/internal/config"
	"github.com/mamadbah2/platelog/internal/domain/models"
)

func replyWith(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != messagesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string, timeout time.Duration) Client {
	return NewClient(config.AIConfig{AnthropicKey: "test-key", BaseURL: url, Model: "test-model", Timeout: timeout})
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"bare":        {in: `{"a":1}`, want: `{"a":1}`},
		"fenced":      {in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		"plain fence": {in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		"with prose":  {in: "Sure! Here it is: {\"a\":{\"b\":2}} Hope that helps.", want: `{"a":{"b":2}}`},
		"no json":     {in: "I cannot see any food.", wantErr: true},
		"reversed":    {in: "} oops {", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Fatalf("ExtractJSON() error = %v, want ErrNoJSON", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ExtractJSON() = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestAnalyzeFood(t *testing.T) {
	var captured messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{
				"type": "text",
				"text": "```json\n{\"foodFound\":true,\"description\":\"Pancakes\",\"calories\":520.4,\"nutrition\":{\"protein\":10,\"fat\":35,\"carbs\":55}}\n```",
			}},
		})
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL, time.Second).AnalyzeFood(context.Background(), []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	if err != nil {
		t.Fatalf("AnalyzeFood() error = %v", err)
	}
	if !reply.FoodFound || reply.Description != "Pancakes" || reply.Calories != 520.4 || reply.Nutrition.Carbs != 55 {
		t.Fatalf("AnalyzeFood() = %+v", reply)
	}

	if captured.Model != "test-model" || len(captured.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", captured)
	}
	blocks, ok := captured.Messages[0].Content.([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected image and text blocks, got %#v", captured.Messages[0].Content)
	}
	image := blocks[0].(map[string]any)
	source := image["source"].(map[string]any)
	if image["type"] != "image" || source["media_type"] != "image/jpeg" || source["data"] != "/9j/" {
		t.Fatalf("unexpected image block: %#v", image)
	}
}

func TestAnalyzeFoodFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := replyWith(t, http.StatusInternalServerError, "{}")
		if _, err := newTestClient(srv.URL, time.Second).AnalyzeFood(context.Background(), []byte("x"), "image/png"); err == nil {
			t.Fatal("expected error for 500")
		}
	})

	t.Run("no json", func(t *testing.T) {
		srv := replyWith(t, http.StatusOK, "That looks delicious!")
		if _, err := newTestClient(srv.URL, time.Second).AnalyzeFood(context.Background(), []byte("x"), "image/png"); !errors.Is(err, ErrNoJSON) {
			t.Fatalf("error = %v, want ErrNoJSON", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()
		if _, err := newTestClient(srv.URL, 20*time.Millisecond).AnalyzeFood(context.Background(), []byte("x"), "image/png"); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}

func TestSummarizeDay(t *testing.T) {
	var captured messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": `{"summary":"Balanced day.","advice":"Add vegetables."}`}},
		})
	}))
	defer srv.Close()

	req := DayRequest{
		DayLabel:    "Monday, Jan 1",
		CalorieGoal: 1800,
		Entries: []models.FoodEntry{
			{Name: "Toast", Calories: 250, Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC).UnixMilli()},
		},
	}
	advice, err := newTestClient(srv.URL, time.Second).SummarizeDay(context.Background(), req)
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if advice.Summary != "Balanced day." || advice.Advice != "Add vegetables." {
		t.Fatalf("SummarizeDay() = %+v", advice)
	}

	prompt, _ := captured.Messages[0].Content.(string)
	for _, want := range []string{"Monday, Jan 1", "1800 kcal", "Toast", "250 kcal", "protein 20%"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSummarizeDayRejectsEmptyAdvice(t *testing.T) {
	srv := replyWith(t, http.StatusOK, `{"summary":"","advice":"  "}`)
	if _, err := newTestClient(srv.URL, time.Second).SummarizeDay(context.Background(), DayRequest{DayLabel: "x"}); err == nil {
		t.Fatal("expected error for empty advice")
	}
}

func TestSendIgnoresResponseContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"summary\":\"Light day.\",\"advice\":\"Eat lunch.\"}"}]}`))
	}))
	defer srv.Close()

	advice, err := newTestClient(srv.URL, time.Second).SummarizeDay(context.Background(), DayRequest{DayLabel: "Monday, Jan 1"})
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if advice.Summary != "Light day." || advice.Advice != "Eat lunch." {
		t.Fatalf("SummarizeDay() = %+v", advice)
	}
}
