package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// End-to-end smoke check against a running classtrack-api instance:
// register, login, create a student with an assignment, list it back.
func main() {
	base := os.Getenv("CLASSTRACK_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	username := fmt.Sprintf("smoke-%d", rand.New(rand.NewSource(time.Now().UnixNano())).Int())
	password := "smoke-test-password"

	status, _ := call(client, http.MethodPost, base+"/v1/auth/register", "", map[string]any{
		"username": username,
		"password": password,
	})
	if status != http.StatusCreated {
		log.Fatalf("register: unexpected status %d", status)
	}

	var login struct {
		Token string `json:"token"`
	}
	status, body := call(client, http.MethodPost, base+"/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		log.Fatalf("login: unexpected status %d", status)
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		log.Fatalf("login: no token in response: %s", body)
	}

	var student struct {
		ID string `json:"id"`
	}
	status, body = call(client, http.MethodPost, base+"/v1/students", login.Token, map[string]any{
		"name":  "Smoke Student",
		"email": "smoke@classtrack.local",
	})
	if status != http.StatusCreated {
		log.Fatalf("create student: unexpected status %d", status)
	}
	if err := json.Unmarshal(body, &student); err != nil || student.ID == "" {
		log.Fatalf("create student: bad response: %s", body)
	}

	var assignment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	status, body = call(client, http.MethodPost, base+"/v1/assignments", login.Token, map[string]any{
		"student_id": student.ID,
		"title":      "Smoke assignment",
	})
	if status != http.StatusCreated {
		log.Fatalf("create assignment: unexpected status %d", status)
	}
	if err := json.Unmarshal(body, &assignment); err != nil || assignment.Status != "pending" {
		log.Fatalf("create assignment: bad response: %s", body)
	}

	var listing struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	status, body = call(client, http.MethodGet, base+"/v1/students/"+student.ID+"/assignments", login.Token, nil)
	if status != http.StatusOK {
		log.Fatalf("list assignments: unexpected status %d", status)
	}
	if err := json.Unmarshal(body, &listing); err != nil || len(listing.Items) != 1 || listing.Items[0].ID != assignment.ID {
		log.Fatalf("list assignments: expected the created assignment, got %s", body)
	}

	fmt.Printf("✅ classtrack-api smoke test passed: student=%s assignment=%s\n", student.ID, assignment.ID)
}

func call(client *http.Client, method, url, token string, payload any) (int, []byte) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		log.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes()
}
