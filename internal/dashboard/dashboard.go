// Package dashboard serves the browser-facing metrics dashboard: a single
// embedded HTML/JS asset plus the WebSocket hub that streams live samples
// and active alerts to every connected browser, grounded on
// original_source/src/main.cpp's wiring of a static dashboard route next to
// the metrics WebSocket endpoint.
package dashboard

import (
	"embed"

	"github.com/SarthakJain2/monitord/internal/httpx"
	"github.com/SarthakJain2/monitord/internal/router"
)

//go:embed assets/index.html
var assets embed.FS

var indexHTML = mustReadIndex()

func mustReadIndex() []byte {
	data, err := assets.ReadFile("assets/index.html")
	if err != nil {
		panic("dashboard: embedded index.html missing: " + err.Error())
	}
	return data
}

// IndexHandler answers any request with the dashboard's static HTML page.
// It contributes no server-side templating or logic of its own.
func IndexHandler() router.Handler {
	return func(_ *httpx.Request) *httpx.Response {
		return httpx.NewResponse(httpx.StatusOK).
			SetContentType("text/html; charset=utf-8").
			SetBody(indexHTML)
	}
}
