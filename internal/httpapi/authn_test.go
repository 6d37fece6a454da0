package httpapi

import "testing"

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"plain", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"extra whitespace", "  Bearer token  ", "token", true},
		{"empty", "", "", false},
		{"scheme only", "Bearer ", "", false},
		{"wrong scheme", "Basic dXNlcjpwdw==", "", false},
		{"no scheme", "abc.def.ghi", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error, got token %q", got)
			}
			if tc.ok && got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/v1/auth/register", "/v1/auth/login", "/v1/info", "/metrics", "/healthz", "/readyz", "/openapi.yaml", "/"}
	for _, p := range public {
		if !isPublicPath(p) {
			t.Errorf("expected %q to be public", p)
		}
	}
	private := []string{"/v1/students", "/v1/assignments", "/v1/students/abc", "/v1/events", "/v1/info2"}
	for _, p := range private {
		if isPublicPath(p) {
			t.Errorf("expected %q to be protected", p)
		}
	}
}
