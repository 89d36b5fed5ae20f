package httpx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ServerName is emitted in the default Server response header.
const ServerName = "monitord/1.0"

// Status is an HTTP response status code.
type Status int

const (
	StatusOK                  Status = 200
	StatusCreated             Status = 201
	StatusNoContent           Status = 204
	StatusSwitchingProtocols  Status = 101
	StatusBadRequest          Status = 400
	StatusUnauthorized        Status = 401
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusMethodNotAllowed    Status = 405
	StatusInternalServerError Status = 500
	StatusNotImplemented      Status = 501
	StatusServiceUnavailable  Status = 503
)

// reasonPhrases holds the canonical IANA reason for each status this
// server emits. Unknown codes fall back to "Unknown".
var reasonPhrases = map[Status]string{
	StatusOK:                  "OK",
	StatusCreated:              "Created",
	StatusNoContent:            "No Content",
	StatusSwitchingProtocols:   "Switching Protocols",
	StatusBadRequest:           "Bad Request",
	StatusUnauthorized:         "Unauthorized",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusInternalServerError:  "Internal Server Error",
	StatusNotImplemented:       "Not Implemented",
	StatusServiceUnavailable:   "Service Unavailable",
}

// ReasonPhrase returns the canonical reason for status, or "Unknown".
func ReasonPhrase(status Status) string {
	if r, ok := reasonPhrases[status]; ok {
		return r
	}
	return "Unknown"
}

// Response is a mutable HTTP/1.1 response under construction. Headers
// preserve the case they were set with; Content-Length tracks Body
// automatically through SetBody.
type Response struct {
	Status  Status
	headers map[string]string
	order   []string
	Body    []byte
}

// NewResponse builds a Response with the default Server/Connection headers.
func NewResponse(status Status) *Response {
	r := &Response{Status: status, headers: make(map[string]string)}
	r.SetHeader("Server", ServerName)
	r.SetHeader("Connection", "close")
	return r
}

// SetHeader sets a header, preserving the given key's case on output and
// the order headers were first set in.
func (r *Response) SetHeader(key, value string) *Response {
	if _, exists := r.headers[key]; !exists {
		r.order = append(r.order, key)
	}
	r.headers[key] = value
	return r
}

// SetContentType sets the Content-Type header.
func (r *Response) SetContentType(contentType string) *Response {
	return r.SetHeader("Content-Type", contentType)
}

// SetBody sets the body and updates Content-Length to match its length.
func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
	return r
}

// JSON sets Content-Type: application/json and the body to json.
func (r *Response) JSON(json string) *Response {
	r.SetContentType("application/json")
	r.SetBody([]byte(json))
	return r
}

// Bytes serializes the response into its wire form:
// "HTTP/1.1 <code> <reason>\r\n" then each header, a blank line, then body.
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, ReasonPhrase(r.Status))
	for _, key := range r.order {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, r.headers[key])
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}

// OK builds a 200 response with body as its content.
func OK(body string) *Response {
	return NewResponse(StatusOK).SetBody([]byte(body))
}

// Created builds a 201 response with body as its content.
func Created(body string) *Response {
	return NewResponse(StatusCreated).SetBody([]byte(body))
}

// NotFound builds a 404 text/plain response.
func NotFound(message string) *Response {
	return NewResponse(StatusNotFound).SetContentType("text/plain").SetBody([]byte(message))
}

// BadRequest builds a 400 text/plain response.
func BadRequest(message string) *Response {
	return NewResponse(StatusBadRequest).SetContentType("text/plain").SetBody([]byte(message))
}

// Forbidden builds a 403 text/plain response.
func Forbidden(message string) *Response {
	return NewResponse(StatusForbidden).SetContentType("text/plain").SetBody([]byte(message))
}

// InternalError builds a 500 text/plain response.
func InternalError(message string) *Response {
	return NewResponse(StatusInternalServerError).SetContentType("text/plain").SetBody([]byte(message))
}

// JSONResponse builds a response with the given status and a JSON body.
func JSONResponse(json string, status Status) *Response {
	return NewResponse(status).JSON(json)
}

// extensionContentTypes maps a lowercased file extension (with leading dot)
// to the Content-Type FromFile infers for it.
var extensionContentTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// FromFile returns a 200 response whose body is the file's contents, with
// Content-Type inferred from its extension. A missing file yields 404, a
// non-regular file yields 400, and an open failure yields 500.
func FromFile(path string) *Response {
	info, err := os.Stat(path)
	if err != nil {
		return NotFound("File not found")
	}
	if !info.Mode().IsRegular() {
		return BadRequest("Path is not a file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return InternalError("Failed to open file")
	}

	resp := NewResponse(StatusOK).SetBody(data)
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extensionContentTypes[ext]; ok {
		resp.SetContentType(ct)
	} else {
		resp.SetContentType("application/octet-stream")
	}
	return resp
}
