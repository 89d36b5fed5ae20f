// Package router implements registration and first-match dispatch of
// (method, path-pattern) routes with typed path parameters, grounded on
// the regex-compiled pattern matching the teacher corpus uses for its own
// high-level path routing (highlevel/server.go's convertToRegex).
package router

import (
	"regexp"
	"strings"

	"github.com/SarthakJain2/monitord/internal/httpx"
)

// Handler answers a parsed Request with a Response.
type Handler func(*httpx.Request) *httpx.Response

// route is a single registered (method, pattern) → handler binding.
type route struct {
	method     httpx.Method
	pattern    string
	matcher    *regexp.Regexp
	paramNames []string
	handler    Handler
}

// Router stores routes in registration order and dispatches to the first
// one whose method and path both match. Additive only; no deregistration.
type Router struct {
	routes []route
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Register adds a route for method matching pattern. pattern is split on
// '/'; each segment is a literal, a ":name" parameter (matches exactly one
// non-empty segment), or a trailing "*" wildcard (matches the remainder of
// the path, including slashes).
func (r *Router) Register(method httpx.Method, pattern string, handler Handler) {
	matcher, names := compilePattern(pattern)
	r.routes = append(r.routes, route{
		method:     method,
		pattern:    pattern,
		matcher:    matcher,
		paramNames: names,
		handler:    handler,
	})
}

// compilePattern turns a route pattern into an anchored regexp plus the
// ordered parameter names its capture groups bind.
func compilePattern(pattern string) (*regexp.Regexp, []string) {
	if pattern == "/" {
		return regexp.MustCompile(`^/$`), nil
	}

	segments := strings.Split(pattern, "/")
	var names []string
	var b strings.Builder
	b.WriteString("^")

	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if seg == "*" && i == len(segments)-1 {
			b.WriteString(`(?:/(.*))?`)
			names = append(names, "*")
			continue
		}
		if strings.HasPrefix(seg, ":") {
			names = append(names, seg[1:])
			b.WriteString(`/([^/]+)`)
			continue
		}
		b.WriteString("/")
		b.WriteString(regexp.QuoteMeta(seg))
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String()), names
}

// Dispatch finds the first route matching req's method and path, binds
// path parameters onto req, and invokes its handler. If no route matches,
// it returns a 404 with body "Route not found". Method mismatch is also a
// 404, keeping the dispatch table flat rather than surfacing 405.
func (r *Router) Dispatch(req *httpx.Request) *httpx.Response {
	for _, rt := range r.routes {
		if rt.method != req.Method {
			continue
		}
		match := rt.matcher.FindStringSubmatch(req.Path)
		if match == nil {
			continue
		}
		if req.PathParams == nil {
			req.PathParams = make(map[string]string)
		}
		for i, name := range rt.paramNames {
			if i+1 < len(match) {
				req.PathParams[name] = match[i+1]
			}
		}
		return rt.handler(req)
	}
	return httpx.NotFound("Route not found")
}
