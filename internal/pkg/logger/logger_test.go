package logger

import "testing"

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	if got := sanitizeValue("api_key", "sk-123"); got != "[REDACTED]" {
		t.Fatalf("api_key: got=%v", got)
	}
	if got := sanitizeValue("authorization", "Bearer x"); got != "[REDACTED]" {
		t.Fatalf("authorization: got=%v", got)
	}
	if got := sanitizeValue("title", "Intro"); got != "Intro" {
		t.Fatalf("title should pass through, got=%v", got)
	}
}

func TestSanitizeValueHashesUserIDs(t *testing.T) {
	got, ok := sanitizeValue("user_id", "student-1").(string)
	if !ok {
		t.Fatalf("expected string hash")
	}
	if len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("unexpected hash format: %q", got)
	}
	again := sanitizeValue("user_id", "student-1")
	if again != got {
		t.Fatalf("hash not stable: %q vs %q", got, again)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJzdHVkZW50LTEifQ.sig") {
		t.Fatalf("expected jwt-shaped string to match")
	}
	if looksLikeJWT("not.a.jwt") {
		t.Fatalf("short segments should not match")
	}
}
