package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                   "/",
		"/metrics":                           "/metrics",
		"/v1/students":                       "/v1/students",
		"/v1/students/01ARZ3NDEKTSV4RRFFQ6":  "/v1/students/:id",
		"/v1/students/abc/assignments":       "/v1/students/:id/assignments",
		"/v1/students/abc/extra":             "/v1/students/abc/extra",
		"/v1/assignments/abc":                "/v1/assignments/:id",
		"/v1/assignments":                    "/v1/assignments",
		"/v1/assignments/abc?student_id=xyz": "/v1/assignments/:id",
		"/v1/auth/login":                     "/v1/auth/login",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
