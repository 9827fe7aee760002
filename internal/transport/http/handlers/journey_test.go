package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"perfsys/internal/app/server"
	"perfsys/internal/domain/auth"
	"perfsys/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:              ":0",
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		Environment:       "test",
		CORSOrigins:       []string{"http://localhost"},
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		RunMigrations:     true,
		RunSeed:           true,
		MigrationsDir:     "../../../../migrations",
		MaxBodyBytes:      1048576,
		MetricsEnabled:    false,
		RateLimitPerMin:   1000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func TestGoalBudgetAndEvaluationJourney(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()

	token := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")
	employeeID := createEmployee(t, client, ts.URL, token)

	// A 60-weight goal fits; a second 50-weight goal would push the
	// 2026 total past 100 and must be rejected.
	createGoal(t, client, ts.URL, token, employeeID, "Ship v2", "60")
	postJSONStatus(t, client, ts.URL+"/api/v1/goals", token, goalBody(employeeID, "Too heavy", "50"), http.StatusBadRequest)
	createGoal(t, client, ts.URL, token, employeeID, "Mentor juniors", "40")
	// Weight zero sits at the bottom of the allowed range and consumes
	// none of the budget, so it still fits a fully committed year.
	createGoal(t, client, ts.URL, token, employeeID, "Stretch reading list", "0")

	check := getJSON(t, client, ts.URL+"/api/v1/goals/validate-weights?employeeId="+employeeID+"&year=2026", token)
	var weights map[string]any
	if err := json.Unmarshal(check.Data, &weights); err != nil {
		t.Fatalf("failed to decode weight check: %v", err)
	}
	if complete, _ := weights["complete"].(bool); !complete {
		t.Fatalf("expected weight budget to be complete, got %v", weights)
	}

	// A strong 2026 training result earns the +0.15 impact.
	postJSON(t, client, ts.URL+"/api/v1/training/results", token, map[string]any{
		"employeeId":  employeeID,
		"courseName":  "Incident Response",
		"score":       "92",
		"completedAt": "2026-03-15",
	})

	evaluationID := createEvaluation(t, client, ts.URL, token, employeeID, "2026")

	putJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/scores", token, map[string]any{
		"goalsScore":       "2.0",
		"behaviorScore":    "2.0",
		"initiativesScore": "2.0",
		"managerNotes":     "needs a structured plan",
	})

	// Evidence items record who added and who removed them.
	itemResp := postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/items", token, map[string]any{
		"itemType": "initiative",
		"title":    "Led the audit remediation",
		"score":    "4",
	})
	var withItems struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(itemResp.Data, &withItems); err != nil {
		t.Fatalf("failed to decode item response: %v", err)
	}
	if len(withItems.Items) != 1 {
		t.Fatalf("expected one evaluation item, got %d", len(withItems.Items))
	}
	itemID, _ := withItems.Items[0]["id"].(string)
	var itemCreator string
	if err := app.Pool.QueryRow(context.Background(),
		"SELECT COALESCE(created_by::text, '') FROM evaluation_items WHERE id = $1", itemID).Scan(&itemCreator); err != nil {
		t.Fatalf("failed to load item creator: %v", err)
	}
	if itemCreator == "" {
		t.Fatal("expected the item to record its creator")
	}
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/evaluations/"+evaluationID+"/items/"+itemID, token, nil)
	var itemDeleter string
	if err := app.Pool.QueryRow(context.Background(),
		"SELECT COALESCE(updated_by::text, '') FROM evaluation_items WHERE id = $1 AND is_deleted", itemID).Scan(&itemDeleter); err != nil {
		t.Fatalf("failed to load item deleter: %v", err)
	}
	if itemDeleter == "" {
		t.Fatal("expected the item to record who removed it")
	}

	result := postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/finalize", token, map[string]any{})
	var finalized struct {
		FinalScore  string `json:"finalScore"`
		FinalRating string `json:"finalRating"`
		PIPCreated  bool   `json:"pipCreated"`
		PIPID       string `json:"pipId"`
	}
	if err := json.Unmarshal(result.Data, &finalized); err != nil {
		t.Fatalf("failed to decode finalize response: %v", err)
	}
	// 2.0 weighted + 0.15 training impact = 2.15, below the 2.5 line.
	if finalized.FinalScore != "2.15" {
		t.Fatalf("expected final score 2.15, got %s", finalized.FinalScore)
	}
	if finalized.FinalRating != "below_expected" {
		t.Fatalf("expected rating below_expected, got %s", finalized.FinalRating)
	}
	if !finalized.PIPCreated || finalized.PIPID == "" {
		t.Fatalf("expected a PIP to be opened, got %+v", finalized)
	}

	pips := getJSON(t, client, ts.URL+"/api/v1/pips?employeeId="+employeeID, token)
	var pipPage struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(pips.Data, &pipPage); err != nil {
		t.Fatalf("failed to decode pip list: %v", err)
	}
	if pipPage.Total == 0 {
		t.Fatal("expected the opened PIP to be listed")
	}

	approve := postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/approve", token, map[string]any{})
	var approved map[string]any
	if err := json.Unmarshal(approve.Data, &approved); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if status, _ := approved["status"].(string); status != "approved" {
		t.Fatalf("expected evaluation status approved, got %v", approved["status"])
	}
}

func TestConcurrentGoalCreatesRespectBudget(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")
	employeeID := createEmployee(t, client, ts.URL, token)

	// Two 60-weight goals racing for the same 100-point year: exactly
	// one must win.
	statuses := make([]int, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(goalBody(employeeID, fmt.Sprintf("Racing goal %d", i), "60"))
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/goals", bytes.NewReader(body))
			if err != nil {
				errs[i] = err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := client.Do(req)
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent goal create failed: %v", err)
		}
	}

	created, rejected := 0, 0
	for _, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
			rejected++
		}
	}
	if created != 1 || rejected != 1 {
		t.Fatalf("expected exactly one create to win, got statuses %v", statuses)
	}
}

func TestEmployeeRoleCannotCreateEvaluations(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()
	ctx := context.Background()

	var roleID string
	if err := app.Pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", auth.RoleEmployee).Scan(&roleID); err != nil {
		t.Fatalf("failed to load employee role: %v", err)
	}

	email := fmt.Sprintf("worker-%d@example.com", time.Now().UnixNano())
	password := "Worker123!"
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	if err := app.Pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role_id, status)
    VALUES ($1,$2,$3,'active')
    RETURNING id
  `, email, hash, roleID).Scan(&userID); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	var employeeID string
	if err := app.Pool.QueryRow(ctx, `
    INSERT INTO employees (user_id, employee_number, first_name, last_name, email)
    VALUES ($1,$2,'Worker','Bee',$3)
    RETURNING id
  `, userID, fmt.Sprintf("E%d", time.Now().UnixNano()), email).Scan(&employeeID); err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}

	token := login(t, client, ts.URL, email, password)
	status := rawPostStatus(t, client, ts.URL+"/api/v1/evaluations", token, map[string]any{
		"employeeId":     employeeID,
		"period":         "2026",
		"evaluationType": "annual",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for employee evaluation create, got %d", status)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	nano := time.Now().UnixNano()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"employeeNumber": fmt.Sprintf("E%d", nano),
		"firstName":      "Journey",
		"lastName":       "Tester",
		"email":          fmt.Sprintf("journey-%d@example.com", nano),
		"status":         "active",
		"hireDate":       "2024-02-01",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode employee response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected employee id")
	}
	return id
}

func goalBody(employeeID, title, weight string) map[string]any {
	return map[string]any{
		"employeeId": employeeID,
		"title":      title,
		"type":       "operational",
		"weight":     weight,
		"startDate":  "2026-01-01",
		"endDate":    "2026-12-31",
	}
}

func createGoal(t *testing.T, client *http.Client, baseURL, token, employeeID, title, weight string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/goals", token, goalBody(employeeID, title, weight))
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode goal response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected goal id")
	}
	return id
}

func createEvaluation(t *testing.T, client *http.Client, baseURL, token, employeeID, period string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/evaluations", token, map[string]any{
		"employeeId":     employeeID,
		"period":         period,
		"evaluationType": "annual",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode evaluation response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected evaluation id")
	}
	return id
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPut, url, token, body)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) envelope {
	t.Helper()
	env, status, raw := request(t, client, method, url, token, body)
	if status >= 400 {
		t.Fatalf("unexpected status %d: %s", status, raw)
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	env, status, raw := request(t, client, http.MethodPost, url, token, body)
	if status != want {
		t.Fatalf("expected status %d, got %d: %s", want, status, raw)
	}
	return env
}

func rawPostStatus(t *testing.T, client *http.Client, url, token string, body any) int {
	t.Helper()
	_, status, _ := request(t, client, http.MethodPost, url, token, body)
	return status
}

func request(t *testing.T, client *http.Client, method, url, token string, body any) (envelope, int, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env, resp.StatusCode, string(raw)
}
