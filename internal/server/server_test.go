package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/camvine/fakesdb/internal/storage"
)

// newTestRouter returns the full handler over a fresh temp data dir.
func newTestRouter(t *testing.T, cfg *storage.Config) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}
	dir, err := storage.NewDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return NewRouter(dir, cfg)
}

// do performs one wire request with the given action and parameters.
func do(t *testing.T, h http.Handler, action string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if params == nil {
		params = url.Values{}
	}
	if action != "" {
		params.Set("Action", action)
	}
	req := httptest.NewRequest(http.MethodGet, "/?"+params.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDispatch(t *testing.T) {
	t.Run("create list delete domain", func(t *testing.T) {
		h := newTestRouter(t, nil)
		w := do(t, h, "CreateDomain", url.Values{"DomainName": {"things"}})
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<CreateDomainResponse") {
			t.Fatalf("CreateDomain: %d %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "<RequestId>") {
			t.Errorf("missing request id: %s", w.Body.String())
		}

		w = do(t, h, "ListDomains", nil)
		if !strings.Contains(w.Body.String(), "<DomainName>things</DomainName>") {
			t.Errorf("ListDomains: %s", w.Body.String())
		}

		w = do(t, h, "DeleteDomain", url.Values{"DomainName": {"things"}})
		if !strings.Contains(w.Body.String(), "<DeleteDomainResponse") {
			t.Errorf("DeleteDomain: %s", w.Body.String())
		}
		w = do(t, h, "ListDomains", nil)
		if strings.Contains(w.Body.String(), "<DomainName>") {
			t.Errorf("domain survived delete: %s", w.Body.String())
		}
	})

	t.Run("put get delete attributes", func(t *testing.T) {
		h := newTestRouter(t, nil)
		do(t, h, "CreateDomain", url.Values{"DomainName": {"things"}})
		w := do(t, h, "PutAttributes", url.Values{
			"DomainName":        {"things"},
			"ItemName":          {"item1"},
			"Attribute.0.Name":  {"color"},
			"Attribute.0.Value": {"red"},
		})
		if !strings.Contains(w.Body.String(), "<PutAttributesResponse") {
			t.Fatalf("PutAttributes: %s", w.Body.String())
		}

		w = do(t, h, "GetAttributes", url.Values{"DomainName": {"things"}, "ItemName": {"item1"}})
		body := w.Body.String()
		if !strings.Contains(body, "<Name>color</Name>") || !strings.Contains(body, "<Value>red</Value>") {
			t.Errorf("GetAttributes: %s", body)
		}

		w = do(t, h, "DeleteAttributes", url.Values{"DomainName": {"things"}, "ItemName": {"item1"}})
		if !strings.Contains(w.Body.String(), "<DeleteAttributesResponse") {
			t.Fatalf("DeleteAttributes: %s", w.Body.String())
		}
		w = do(t, h, "GetAttributes", url.Values{"DomainName": {"things"}, "ItemName": {"item1"}})
		if strings.Contains(w.Body.String(), "<Value>") {
			t.Errorf("attributes survived delete: %s", w.Body.String())
		}
	})

	t.Run("batch put then select", func(t *testing.T) {
		h := newTestRouter(t, nil)
		do(t, h, "CreateDomain", url.Values{"DomainName": {"things"}})
		w := do(t, h, "BatchPutAttributes", url.Values{
			"DomainName":               {"things"},
			"Item.0.ItemName":          {"item1"},
			"Item.0.Attribute.0.Name":  {"color"},
			"Item.0.Attribute.0.Value": {"red"},
			"Item.1.ItemName":          {"item2"},
			"Item.1.Attribute.0.Name":  {"color"},
			"Item.1.Attribute.0.Value": {"blue"},
		})
		if !strings.Contains(w.Body.String(), "<BatchPutAttributesResponse") {
			t.Fatalf("BatchPutAttributes: %s", w.Body.String())
		}

		w = do(t, h, "Select", url.Values{"SelectExpression": {"SELECT * FROM things WHERE color = 'red'"}})
		body := w.Body.String()
		if !strings.Contains(body, "<Name>item1</Name>") {
			t.Errorf("expected item1 in result: %s", body)
		}
		if strings.Contains(body, "<Name>item2</Name>") {
			t.Errorf("item2 must be filtered out: %s", body)
		}
	})

	t.Run("missing parameter fault", func(t *testing.T) {
		h := newTestRouter(t, nil)
		w := do(t, h, "CreateDomain", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "<Code>MissingParameter</Code>") || !strings.Contains(body, "<RequestID>") {
			t.Errorf("unexpected fault body: %s", body)
		}
	})

	t.Run("invalid domain name fault", func(t *testing.T) {
		h := newTestRouter(t, nil)
		w := do(t, h, "CreateDomain", url.Values{"DomainName": {"no spaces allowed"}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "<Code>InvalidParameterValue</Code>") {
			t.Errorf("unexpected fault body: %s", w.Body.String())
		}
	})

	t.Run("domain cap fault", func(t *testing.T) {
		cfg := storage.DefaultConfig()
		cfg.DomainCap = 1
		h := newTestRouter(t, cfg)
		do(t, h, "CreateDomain", url.Values{"DomainName": {"first"}})
		w := do(t, h, "CreateDomain", url.Values{"DomainName": {"second"}})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "<Code>NumberDomainsExceeded</Code>") {
			t.Errorf("unexpected fault body: %s", w.Body.String())
		}
	})

	t.Run("unknown action placeholder", func(t *testing.T) {
		h := newTestRouter(t, nil)
		w := do(t, h, "WarpDrive", nil)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "whatever") {
			t.Errorf("unexpected placeholder: %s", w.Body.String())
		}
	})

	t.Run("health", func(t *testing.T) {
		h := newTestRouter(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Errorf("health: %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("unparseable form body", func(t *testing.T) {
		h := newTestRouter(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("Action=CreateDomain&bad=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "<Code>InvalidParameterValue</Code>") {
			t.Errorf("unexpected fault body: %s", w.Body.String())
		}
	})

	t.Run("post form body", func(t *testing.T) {
		h := newTestRouter(t, nil)
		form := url.Values{"Action": {"CreateDomain"}, "DomainName": {"posted"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<CreateDomainResponse") {
			t.Errorf("POST CreateDomain: %d %s", w.Code, w.Body.String())
		}
	})
}

func TestThrottle(t *testing.T) {
	cfg := storage.DefaultConfig()
	cfg.RatePerMin = 1
	h := newTestRouter(t, cfg)
	w := do(t, h, "ListDomains", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w = do(t, h, "ListDomains", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Code>ServiceUnavailable</Code>") {
		t.Errorf("unexpected throttle body: %s", w.Body.String())
	}
}
