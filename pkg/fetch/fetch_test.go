package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edgemirror/image-cache-server/pkg/e"
)

// routingTransport fakes the source CDN without any network, dispatching on
// the request URL and recording every URL tried in order.
type routingTransport struct {
	route func(req *http.Request) *http.Response
	calls []string
}

func (rt *routingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.calls = append(rt.calls, req.URL.String())
	resp := rt.route(req)
	if resp == nil {
		return nil, errors.New("connection refused")
	}
	return resp, nil
}

func makeResponse(status int, contentType, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(route func(req *http.Request) *http.Response) (*Client, *routingTransport) {
	rt := &routingTransport{route: route}
	client := NewWithHTTPClient(DefaultConfig(), &http.Client{Transport: rt})
	return client, rt
}

func TestFetchFirstAttemptSuccess(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		if req.Header.Get("User-Agent") == "" || req.Header.Get("Referer") == "" {
			t.Error("expected browser-like headers on the request")
		}
		return makeResponse(200, "image/png", "pngbytes")
	})

	result, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png?ex=a&is=b&format=webp")
	if err != nil {
		t.Fatalf("Fetch() returned error: %s", err.Error())
	}

	expectedCalls := []string{"https://cdn.discordapp.com/attachments/1/2/cat.png?format=webp"}
	if diff := cmp.Diff(expectedCalls, rt.calls); diff != "" {
		t.Errorf("attempted URLs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("pngbytes", string(result.Body)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("image/png", result.ContentType); diff != "" {
		t.Errorf("content type mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("png", result.Extension); diff != "" {
		t.Errorf("extension mismatch (-want +got):\n%s", diff)
	}
	if len(result.Attempts) != 1 {
		t.Errorf("expected 1 attempt, got %d", len(result.Attempts))
	}
}

func TestFetchHostSwapAfterForbidden(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		if req.URL.Host == "cdn.discordapp.com" {
			return makeResponse(403, "text/plain", "forbidden")
		}
		return makeResponse(200, "image/png", "pngbytes")
	})

	result, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png")
	if err != nil {
		t.Fatalf("Fetch() returned error: %s", err.Error())
	}

	expectedCalls := []string{
		"https://cdn.discordapp.com/attachments/1/2/cat.png",
		"https://media.discordapp.net/attachments/1/2/cat.png",
	}
	if diff := cmp.Diff(expectedCalls, rt.calls); diff != "" {
		t.Errorf("exactly two attempts expected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("https://media.discordapp.net/attachments/1/2/cat.png", result.FinalURL); diff != "" {
		t.Errorf("final URL mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchStripsAllParamsAsLastResort(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		if req.URL.RawQuery != "" {
			return makeResponse(403, "text/plain", "forbidden")
		}
		return makeResponse(200, "image/webp", "webpbytes")
	})

	result, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.webp?format=webp&ex=a")
	if err != nil {
		t.Fatalf("Fetch() returned error: %s", err.Error())
	}

	expectedCalls := []string{
		"https://cdn.discordapp.com/attachments/1/2/cat.webp?format=webp",
		"https://media.discordapp.net/attachments/1/2/cat.webp?format=webp",
		"https://media.discordapp.net/attachments/1/2/cat.webp",
	}
	if diff := cmp.Diff(expectedCalls, rt.calls); diff != "" {
		t.Errorf("fallback order mismatch (-want +got):\n%s", diff)
	}
	if len(result.Attempts) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(result.Attempts))
	}
}

func TestFetchNonForbiddenFailureStops(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		return makeResponse(500, "text/plain", "boom")
	})

	_, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *e.Error, got %T", err)
	}
	if apiErr.Kind != e.KindFetch {
		t.Errorf("expected fetch error, got %s", apiErr.Kind)
	}
	if diff := cmp.Diff(500, apiErr.HTTPStatus()); diff != "" {
		t.Errorf("upstream status should propagate (-want +got):\n%s", diff)
	}
	if len(rt.calls) != 1 {
		t.Errorf("a non-forbidden failure must not be retried, got %d attempts", len(rt.calls))
	}
}

func TestFetchExhaustedForbidden(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		return makeResponse(403, "text/plain", "forbidden")
	})

	_, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png?ex=a")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *e.Error, got %T", err)
	}
	if apiErr.Kind != e.KindFetch {
		t.Errorf("expected fetch error, got %s", apiErr.Kind)
	}
	if diff := cmp.Diff(403, apiErr.HTTPStatus()); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if len(rt.calls) != 3 {
		t.Errorf("expected the full 3 attempt sequence, got %d", len(rt.calls))
	}
}

func TestFetchNetworkErrorNotRetried(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		return nil // transport error
	})

	_, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *e.Error, got %T", err)
	}
	if apiErr.Kind != e.KindFetch {
		t.Errorf("expected fetch error, got %s", apiErr.Kind)
	}
	if diff := cmp.Diff(500, apiErr.HTTPStatus()); diff != "" {
		t.Errorf("network errors map to 500 (-want +got):\n%s", diff)
	}
	if len(rt.calls) != 1 {
		t.Errorf("network errors must not be retried, got %d attempts", len(rt.calls))
	}
}

func TestFetchRejectsNonImageContentType(t *testing.T) {
	client, _ := newTestClient(func(req *http.Request) *http.Response {
		return makeResponse(200, "text/html; charset=utf-8", "<html>error page</html>")
	})

	_, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.png")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *e.Error, got %T", err)
	}
	if apiErr.Kind != e.KindValidation {
		t.Errorf("a non-image response is a validation error, got %s", apiErr.Kind)
	}
}

func TestFetchRejectsDisallowedExtension(t *testing.T) {
	client, rt := newTestClient(func(req *http.Request) *http.Response {
		return makeResponse(200, "image/bmp", "bmpbytes")
	})

	_, err := client.Fetch(context.Background(), "https://cdn.discordapp.com/attachments/1/2/cat.bmp")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *e.Error, got %T", err)
	}
	if apiErr.Kind != e.KindValidation {
		t.Errorf("a disallowed extension is a validation error, got %s", apiErr.Kind)
	}
	if len(rt.calls) != 1 {
		t.Errorf("validation failures must not trigger retries, got %d attempts", len(rt.calls))
	}
}
