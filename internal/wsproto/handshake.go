// Package wsproto implements the RFC 6455 WebSocket handshake and frame
// codec, grounded on the teacher's protocol package (handshake.go,
// upgrader.go, frame_codec.go) but adapted to operate on this server's own
// byte-parsed Request/Response types instead of net/http.
package wsproto

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/SarthakJain2/monitord/internal/httpx"
)

// webSocketGUID is the RFC 6455 magic string appended to the client's key
// before hashing to produce Sec-WebSocket-Accept.
const webSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// RequiredVersion is the only Sec-WebSocket-Version this server accepts.
const RequiredVersion = "13"

// MaxHandshakeHeaders bounds the combined size of request headers considered
// during the handshake, guarding against oversized header attacks.
const MaxHandshakeHeaders = 8192

var (
	ErrInvalidUpgradeHeaders = errors.New("invalid websocket upgrade headers")
	ErrMissingKey            = errors.New("missing Sec-WebSocket-Key header")
	ErrBadVersion            = errors.New("unsupported Sec-WebSocket-Version; only 13 is supported")
	ErrHeadersTooLarge       = errors.New("handshake headers too large")
)

// AcceptKey computes Sec-WebSocket-Accept for a client-supplied
// Sec-WebSocket-Key, per RFC 6455 section 1.3.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(webSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// IsUpgradeRequest reports whether req carries the headers that make it a
// WebSocket upgrade request, independent of whether the upgrade itself is
// otherwise valid.
func IsUpgradeRequest(req *httpx.Request) bool {
	return headerContainsToken(req.Header("connection"), "upgrade") &&
		headerContainsToken(req.Header("upgrade"), "websocket")
}

// Handshake validates req as a WebSocket upgrade request and, on success,
// returns the headers the 101 response must carry: Upgrade, Connection, and
// Sec-WebSocket-Accept.
func Handshake(req *httpx.Request) (map[string]string, error) {
	total := 0
	for k, v := range req.Headers {
		total += len(k) + len(v)
	}
	if total > MaxHandshakeHeaders {
		return nil, ErrHeadersTooLarge
	}

	if !IsUpgradeRequest(req) {
		return nil, ErrInvalidUpgradeHeaders
	}

	key := req.Header("sec-websocket-key")
	if key == "" {
		return nil, ErrMissingKey
	}

	if req.Header("sec-websocket-version") != RequiredVersion {
		return nil, ErrBadVersion
	}

	return map[string]string{
		"Upgrade":              "websocket",
		"Connection":           "Upgrade",
		"Sec-WebSocket-Accept": AcceptKey(key),
	}, nil
}

// UpgradeResponse builds the 101 Switching Protocols response for a
// successfully validated handshake.
func UpgradeResponse(req *httpx.Request) (*httpx.Response, error) {
	headers, err := Handshake(req)
	if err != nil {
		return nil, err
	}
	resp := httpx.NewResponse(httpx.StatusSwitchingProtocols)
	for k, v := range headers {
		resp.SetHeader(k, v)
	}
	return resp, nil
}

// headerContainsToken reports whether the comma-separated value header
// contains token, case-insensitively.
func headerContainsToken(header, token string) bool {
	token = strings.ToLower(token)
	for _, part := range strings.Split(header, ",") {
		if strings.ToLower(strings.TrimSpace(part)) == token {
			return true
		}
	}
	return false
}
