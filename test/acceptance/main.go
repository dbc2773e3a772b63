package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Runs against a live server: AUTH_TOKEN=your-secret-token PLAN_STORE_MOCK=true mealplan-scaler
const (
	serverURL     = "http://localhost:8080"
	authToken     = "your-secret-token"
	maxDuration   = 500 * time.Millisecond
	parallelCalls = 20
)

type MCPRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	fmt.Printf("🧪 Running acceptance tests for Meal Plan Scaler\n\n")

	steps := []struct {
		name string
		run  func() error
	}{
		{"health endpoint (no auth)", testHealth},
		{"MCP endpoint rejects missing token", func() error { return expectStatus("", http.StatusUnauthorized) }},
		{"MCP endpoint rejects wrong token", func() error { return expectStatus("wrong-api-key", http.StatusUnauthorized) }},
		{"MCP endpoint accepts correct token", func() error { return expectStatus(authToken, http.StatusOK) }},
		{"list_plans", testListPlans},
		{"scale_day_for_body_weight", testScaleDay},
		{"scale_weight_table", testWeightTable},
		{"concurrent scaling calls", testConcurrentCalls},
	}

	for i, step := range steps {
		fmt.Printf("%d. Testing %s...\n", i+1, step.name)
		if err := step.run(); err != nil {
			fmt.Printf("❌ %s failed: %v\n", step.name, err)
			os.Exit(1)
		}
		fmt.Printf("✅ %s passed\n\n", step.name)
	}

	fmt.Printf("🎉 All acceptance tests passed!\n")
}

func testHealth() error {
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	return nil
}

func post(token string, req MCPRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, serverURL+"/mcp", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(httpReq)
}

func expectStatus(token string, want int) error {
	resp, err := post(token, MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params: map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]string{"name": "acceptance", "version": "1.0.0"},
		},
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected status %d, got %d: %s", want, resp.StatusCode, string(body))
	}
	return nil
}

// callTool invokes a tool and returns its structuredContent
func callTool(name string, args map[string]any) (map[string]any, error) {
	resp, err := post(authToken, MCPRequest{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "tools/call",
		Params:  CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expected status 200, got %d: %s", resp.StatusCode, string(body))
	}

	// responses may arrive as a single server-sent event
	payload := string(body)
	if idx := strings.Index(payload, "data: "); idx >= 0 {
		payload = strings.TrimSpace(payload[idx+len("data: "):])
	}

	var rpc struct {
		Result struct {
			IsError           bool           `json:"isError"`
			StructuredContent map[string]any `json:"structuredContent"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &rpc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rpc.Error != nil {
		return nil, fmt.Errorf("rpc error: %s", rpc.Error.Message)
	}
	if rpc.Result.IsError {
		return nil, fmt.Errorf("tool returned an error: %s", payload)
	}
	return rpc.Result.StructuredContent, nil
}

func testListPlans() error {
	result, err := callTool("list_plans", nil)
	if err != nil {
		return err
	}
	count, _ := result["count"].(float64)
	if count < 1 {
		return fmt.Errorf("expected at least one plan, got %v", result["count"])
	}
	fmt.Printf("   Found %v plans\n", count)
	return nil
}

func testScaleDay() error {
	start := time.Now()
	result, err := callTool("scale_day_for_body_weight", map[string]any{
		"plan_id":        "cut-2000",
		"day":            "maandag",
		"body_weight_kg": 85,
	})
	if err != nil {
		return err
	}
	duration := time.Since(start)

	if factor, _ := result["factor"].(float64); factor != 0.85 {
		return fmt.Errorf("expected factor 0.85, got %v", result["factor"])
	}
	if result["request_id"] == "" {
		return fmt.Errorf("missing request_id")
	}
	if duration > maxDuration {
		return fmt.Errorf("took %v, expected under %v", duration, maxDuration)
	}
	fmt.Printf("   Scaled in %v, correction %v\n", duration, result["correction"])
	return nil
}

func testWeightTable() error {
	result, err := callTool("scale_weight_table", map[string]any{
		"plan_id": "cut-2000",
		"day":     "dinsdag",
	})
	if err != nil {
		return err
	}
	rows, _ := result["rows"].([]any)
	if len(rows) != 13 {
		return fmt.Errorf("expected 13 rows for 70-130 kg, got %d", len(rows))
	}
	return nil
}

func testConcurrentCalls() error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
		slowest  time.Duration
	)

	for i := range parallelCalls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			_, err := callTool("scale_day_for_body_weight", map[string]any{
				"plan_id":        "cut-2000",
				"day":            "maandag",
				"body_weight_kg": 70 + i*3,
			})
			d := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			if d > slowest {
				slowest = d
			}
			if err != nil {
				failures = append(failures, err.Error())
			}
		}()
	}
	wg.Wait()

	fmt.Printf("   %d calls, slowest %v\n", parallelCalls, slowest)
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d calls failed: %s", len(failures), parallelCalls, failures[0])
	}
	return nil
}
