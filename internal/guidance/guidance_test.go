package guidance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/mission"
)

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGenerate_Success(t *testing.T) {
	content := `{"content":"Focus time","steps":["one","two"],"tips":["tip"],"estimatedTime":12,"difficulty":"easy","followUp":["q"]}`
	srv := httptest.NewServer(completionHandler(t, content))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop(), WithEndpoint(srv.URL))
	g, err := c.Generate(context.Background(), Request{
		Category:   mission.CategoryProductivity,
		Difficulty: mission.DifficultyEasy,
		UserLevel:  3,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.Content != "Focus time" || len(g.Steps) != 2 || g.EstimatedTime != 12 {
		t.Errorf("unexpected guidance: %+v", g)
	}
}

func TestGenerate_NoKey(t *testing.T) {
	c := NewClient("", zerolog.Nop())
	if _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Error("Generate without a key must fail")
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop(), WithEndpoint(srv.URL))
	_, err := c.Generate(context.Background(), Request{Category: mission.CategoryHealth})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v, want the api message surfaced", err)
	}
}

func TestGenerate_UnparsableContent(t *testing.T) {
	srv := httptest.NewServer(completionHandler(t, "not json at all"))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop(), WithEndpoint(srv.URL))
	if _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Error("unparsable content must be an error")
	}
}

func TestGenerateOrFallback_FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop(), WithEndpoint(srv.URL))
	g := c.GenerateOrFallback(context.Background(), Request{
		Category:   mission.CategoryHealth,
		Difficulty: mission.DifficultyEasy,
	})
	if g.Content == "" || len(g.Steps) == 0 {
		t.Error("fallback guidance must never be empty")
	}
}

func TestGenerateOrFallback_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop(), WithEndpoint(srv.URL), WithTimeout(20*time.Millisecond))
	g := c.GenerateOrFallback(context.Background(), Request{
		Category:   mission.CategoryProductivity,
		Difficulty: mission.DifficultyMedium,
	})
	if len(g.Steps) == 0 {
		t.Error("timeout must still yield usable guidance")
	}
}

func TestFallback_CoversEveryCategory(t *testing.T) {
	for _, c := range []mission.Category{
		mission.CategoryProductivity, mission.CategoryHealth, mission.CategorySocial,
		mission.CategoryLearning, mission.CategoryCreativity, mission.CategoryFinance,
	} {
		for _, d := range []mission.Difficulty{mission.DifficultyEasy, mission.DifficultyMedium, mission.DifficultyHard} {
			g := Fallback(c, d)
			if g.Content == "" || len(g.Steps) == 0 {
				t.Errorf("Fallback(%s, %s) is empty", c, d)
			}
		}
	}
}

func TestFallback_SpecificBeatsGeneric(t *testing.T) {
	easy := Fallback(mission.CategoryProductivity, mission.DifficultyEasy)
	medium := Fallback(mission.CategoryProductivity, mission.DifficultyMedium)
	if easy.Content == medium.Content {
		t.Error("difficulty-specific entries should differ")
	}
	hard := Fallback(mission.CategoryFinance, mission.DifficultyHard)
	if hard.Content != Fallback(mission.CategoryFinance, mission.DifficultyEasy).Content {
		t.Error("missing difficulty should fall back to the category's easy entry")
	}
}
