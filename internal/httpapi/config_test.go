package httpapi

import "testing"

func TestSetMaxBodyBytes(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	origins := []string{"http://a"}
	SetCORSOptions(true, origins, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	origins[0] = "mutated"
	if !corsEnabled || corsAllowedOrigins[0] != "http://a" {
		t.Fatalf("cors options=%v %v", corsEnabled, corsAllowedOrigins)
	}
}
