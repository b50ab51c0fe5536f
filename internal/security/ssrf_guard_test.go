package security

import (
	"testing"
	"time"
)

func TestSSRFGuard_ValidateURL_AllowsPublicHosts(t *testing.T) {
	guard := NewSSRFGuard()

	allowed := []string{
		"https://images.example.com/photo.jpg",
		"http://cdn.example.org/a/b/c.png",
		"https://93.184.216.34/image.jpg",
	}
	for _, rawURL := range allowed {
		if err := guard.ValidateURL(rawURL); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", rawURL, err)
		}
	}
}

func TestSSRFGuard_ValidateURL_BlocksPrivateAndLoopback(t *testing.T) {
	guard := NewSSRFGuard()

	blocked := []string{
		"http://127.0.0.1/secret",
		"http://127.0.0.53/resolv",
		"http://10.0.0.5/internal",
		"http://172.16.1.1/internal",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0/",
		"http://[::1]/secret",
		"http://[fe80::1]/local",
		"http://localhost/secret",
		"http://LOCALHOST/secret",
	}
	for _, rawURL := range blocked {
		if err := guard.ValidateURL(rawURL); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", rawURL)
		}
	}
}

func TestSSRFGuard_ValidateURL_BlocksDisallowedSchemes(t *testing.T) {
	guard := NewSSRFGuard()

	blocked := []string{
		"file:///etc/passwd",
		"ftp://example.com/file",
		"gopher://example.com/",
		"javascript:alert(1)",
	}
	for _, rawURL := range blocked {
		if err := guard.ValidateURL(rawURL); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", rawURL)
		}
	}
}

func TestSSRFGuard_ValidateURL_RejectsMalformedInput(t *testing.T) {
	guard := NewSSRFGuard()

	for _, rawURL := range []string{"", "https://", "not a url"} {
		if err := guard.ValidateURL(rawURL); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", rawURL)
		}
	}
}

func TestSSRFGuard_NewSafeClient_SetsTimeout(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", client.Timeout)
	}
}
