package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unilater/galeaz/internal/infra/memory"
	transport "github.com/unilater/galeaz/internal/transport/http"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := transport.NewHandler(memory.NewBackend(), nil)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) map[string]any {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func signupUser(t *testing.T, server *httptest.Server) int {
	t.Helper()
	res := postJSON(t, server.URL+"/api/signup.php", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if res["success"] != true {
		t.Fatalf("signup failed: %+v", res)
	}
	user := res["user"].(map[string]any)
	return int(user["id"].(float64))
}

func TestSignupAndLogin(t *testing.T) {
	server := newTestServer(t)
	signupUser(t, server)

	res := postJSON(t, server.URL+"/api/login.php", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if res["success"] != true || res["token"] == "" {
		t.Fatalf("login failed: %+v", res)
	}

	res = postJSON(t, server.URL+"/api/login.php", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	if res["success"] != false {
		t.Fatalf("expected login rejection, got %+v", res)
	}
}

func TestQuestionCatalogEnvelope(t *testing.T) {
	server := newTestServer(t)
	res := getJSON(t, server.URL+"/api/get_domande.php")
	if res["success"] != true {
		t.Fatalf("catalog: %+v", res)
	}
	data := res["data"].([]any)
	if len(data) != 6 {
		t.Fatalf("expected default catalog, got %d entries", len(data))
	}
}

func TestQuestionnaireRoundTrip(t *testing.T) {
	server := newTestServer(t)
	userID := signupUser(t, server)

	// No answers yet: success=false envelope.
	res := getJSON(t, server.URL+"/api/questionario.php?user_id=1")
	if res["success"] != false {
		t.Fatalf("expected no-data envelope, got %+v", res)
	}

	res = postJSON(t, server.URL+"/api/questionario.php", map[string]any{
		"user_id":      userID,
		"questionario": map[string]string{"1": "34", "2": "Donna"},
	})
	if res["success"] != true {
		t.Fatalf("submit: %+v", res)
	}

	res = getJSON(t, server.URL+"/api/questionario.php?user_id=1")
	if res["success"] != true {
		t.Fatalf("reload: %+v", res)
	}
	data := res["data"].(map[string]any)
	if data["1"] != "34" {
		t.Fatalf("expected saved answers, got %+v", data)
	}

	// Profile now carries questionario_data.
	res = getJSON(t, server.URL+"/api/profile.php?user_id=1")
	user := res["user"].(map[string]any)
	if _, ok := user["questionario_data"]; !ok {
		t.Fatalf("expected questionnaire data on profile, got %+v", user)
	}
}

func TestWriteProtectionsRequiresAnswers(t *testing.T) {
	server := newTestServer(t)
	signupUser(t, server)

	res := getJSON(t, server.URL+"/api/scrivi_tutele.php?user_id=1")
	if res["error"] == nil {
		t.Fatalf("expected error field without answers, got %+v", res)
	}

	postJSON(t, server.URL+"/api/questionario.php", map[string]any{
		"user_id":      1,
		"questionario": map[string]string{"1": "34"},
	})
	res = getJSON(t, server.URL+"/api/scrivi_tutele.php?user_id=1")
	if res["success"] != true {
		t.Fatalf("write protections: %+v", res)
	}

	res = getJSON(t, server.URL+"/api/openai/get_tutele.php?user_id=1")
	data := res["data"].(map[string]any)
	if len(data) != 7 {
		t.Fatalf("expected content for all sections, got %d", len(data))
	}
}

func TestColumnUpdateAndCompletion(t *testing.T) {
	server := newTestServer(t)
	signupUser(t, server)

	res := postJSON(t, server.URL+"/api/update_colonna.php", map[string]any{
		"user_id": 1, "column": "salute",
	})
	if res["success"] != true || res["message"] != "ok" || res["content"] == "" {
		t.Fatalf("update column: %+v", res)
	}

	res = postJSON(t, server.URL+"/api/tutela_completata.php", map[string]any{
		"user_id": 1, "column": "salute",
	})
	if res["success"] != true {
		t.Fatalf("mark completed: %+v", res)
	}

	res = getJSON(t, server.URL+"/api/tutele_completate.php?user_id=1")
	data := res["data"].(map[string]any)
	if data["salute"] != true {
		t.Fatalf("expected completion recorded, got %+v", data)
	}

	res = postJSON(t, server.URL+"/api/update_colonna.php", map[string]any{
		"user_id": 1, "column": "sconosciuta",
	})
	if res["success"] != false {
		t.Fatalf("unknown column must be rejected, got %+v", res)
	}
}

func TestAIInitializeGeneratesAllSections(t *testing.T) {
	server := newTestServer(t)
	signupUser(t, server)

	res := getJSON(t, server.URL+"/api/openai/inizializza.php?user_id=1")
	if res["success"] != true {
		t.Fatalf("ai initialize: %+v", res)
	}
	if data := res["data"].(map[string]any); len(data) != 7 {
		t.Fatalf("expected all seven sections, got %d", len(data))
	}
}
