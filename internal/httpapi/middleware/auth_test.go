package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

var testKeys = Keys{Public: []string{"pub_key"}, Admin: []string{"adm_key"}}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/monitor/stop", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireOperator(t *testing.T) {
	h := Require(testKeys, Operator)(okHandler())

	if rec := serve(h, "X-API-Key", "adm_key"); rec.Code != http.StatusOK {
		t.Fatalf("admin key should start/stop monitoring; got %d", rec.Code)
	}
	if rec := serve(h, "X-API-Key", "pub_key"); rec.Code != http.StatusForbidden {
		t.Fatalf("public key must not stop monitoring; got %d", rec.Code)
	}

	rec := serve(h, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["detail"] != "API key required" {
		t.Fatalf("want detail body, got %v (%v)", body, err)
	}
}

func TestRequireViewer_AcceptsEitherKeyAndBearer(t *testing.T) {
	h := Require(testKeys, Viewer)(okHandler())

	for _, hdr := range []string{"Bearer pub_key", "bearer adm_key"} {
		if rec := serve(h, "Authorization", hdr); rec.Code != http.StatusOK {
			t.Fatalf("%q should read status; got %d", hdr, rec.Code)
		}
	}
	if rec := serve(h, "X-API-Key", "pub_ke"); rec.Code != http.StatusForbidden {
		t.Fatalf("prefix of a key must not pass; got %d", rec.Code)
	}
	if rec := serve(h, "Authorization", "Bearer "); rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty bearer counts as no key; got %d", rec.Code)
	}
}

func TestRequire_OpenWhenLevelHasNoKeys(t *testing.T) {
	cases := []struct {
		name string
		keys Keys
		lvl  Level
	}{
		{"no keys at all, viewer", Keys{}, Viewer},
		{"no keys at all, operator", Keys{}, Operator},
		{"public keys only, operator", Keys{Public: []string{"pub_key"}}, Operator},
		{"anonymous level", testKeys, Anonymous},
	}
	for _, c := range cases {
		if rec := serve(Require(c.keys, c.lvl)(okHandler()), "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: want open access; got %d", c.name, rec.Code)
		}
	}
}

func TestKeys_LevelOf(t *testing.T) {
	cases := map[string]Level{
		"adm_key": Operator,
		"pub_key": Viewer,
		"other":   Anonymous,
		"":        Anonymous,
	}
	for key, want := range cases {
		if got := testKeys.LevelOf(key); got != want {
			t.Fatalf("LevelOf(%q)=%s want %s", key, got, want)
		}
	}
}
