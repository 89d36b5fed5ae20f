package wsproto

import (
	"testing"

	"github.com/SarthakJain2/monitord/internal/httpx"
)

func TestAcceptKeyKnownVector(t *testing.T) {
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("AcceptKey = %q, want %q", got, want)
	}
}

func upgradeRequest() *httpx.Request {
	return &httpx.Request{
		Method: httpx.GET,
		Path:   "/ws",
		Headers: map[string]string{
			"connection":            "Upgrade",
			"upgrade":               "websocket",
			"sec-websocket-key":     "dGhlIHNhbXBsZSBub25jZQ==",
			"sec-websocket-version": "13",
		},
	}
}

func TestHandshakeSuccess(t *testing.T) {
	headers, err := Handshake(upgradeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if headers["Sec-WebSocket-Accept"] != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Errorf("accept = %q", headers["Sec-WebSocket-Accept"])
	}
	if headers["Upgrade"] != "websocket" || headers["Connection"] != "Upgrade" {
		t.Errorf("headers = %v", headers)
	}
}

func TestHandshakeMissingUpgradeHeader(t *testing.T) {
	req := upgradeRequest()
	delete(req.Headers, "upgrade")
	if _, err := Handshake(req); err != ErrInvalidUpgradeHeaders {
		t.Fatalf("err = %v, want ErrInvalidUpgradeHeaders", err)
	}
}

func TestHandshakeMissingKey(t *testing.T) {
	req := upgradeRequest()
	delete(req.Headers, "sec-websocket-key")
	if _, err := Handshake(req); err != ErrMissingKey {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
}

func TestHandshakeBadVersion(t *testing.T) {
	req := upgradeRequest()
	req.Headers["sec-websocket-version"] = "8"
	if _, err := Handshake(req); err != ErrBadVersion {
		t.Fatalf("err = %v, want ErrBadVersion", err)
	}
}

func TestUpgradeResponseIs101(t *testing.T) {
	resp, err := UpgradeResponse(upgradeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != httpx.StatusSwitchingProtocols {
		t.Fatalf("status = %v, want 101", resp.Status)
	}
}
