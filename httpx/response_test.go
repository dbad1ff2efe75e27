package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"id": 4})
	if rr.Code != http.StatusCreated {
		t.Errorf("code = %d, want 201", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rr.Body.String(); got != `{"id":4}` {
		t.Errorf("body = %s", got)
	}

	rr = httptest.NewRecorder()
	JSON(rr, http.StatusOK, nil)
	if rr.Body.String() != "null" {
		t.Errorf("nil payload body = %s", rr.Body.String())
	}
}

func TestErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
	if want := `{"error":"validation_failed","details":{"name":"required"}}`; rr.Body.String() != want {
		t.Errorf("JSONError body = %s, want %s", rr.Body.String(), want)
	}

	rr = httptest.NewRecorder()
	Fail(rr, http.StatusBadRequest, "Insufficient stock for product: Bolt")
	if want := `{"error":"Bad Request","message":"Insufficient stock for product: Bolt"}`; rr.Body.String() != want {
		t.Errorf("Fail body = %s, want %s", rr.Body.String(), want)
	}

	rr = httptest.NewRecorder()
	Text(rr, http.StatusOK, "FACT-0001")
	if rr.Body.String() != "FACT-0001" {
		t.Errorf("Text body = %s", rr.Body.String())
	}
}

func TestDecode(t *testing.T) {
	var v struct{ Name string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"x"}`))
	if err := Decode(r, &v); err != nil || v.Name != "x" {
		t.Errorf("Decode() = %v, %+v", err, v)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := Decode(r, &v); err != ErrEmptyBody {
		t.Errorf("Decode(empty) = %v, want ErrEmptyBody", err)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := Decode(r, &v); err == nil {
		t.Error("Decode(bad) = nil, want error")
	}
}
