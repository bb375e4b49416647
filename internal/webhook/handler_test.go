package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	apphttp "webhook_relay_backend/internal/http"
	"webhook_relay_backend/internal/trackdrive"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(leads LeadSubmitter, sink SheetSink) *gin.Engine {
	engine := gin.New()
	NewModule(newTestService(leads, sink), nil).RegisterRoutes(&apphttp.RouterContext{Engine: engine})
	return engine
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	decoder := json.NewDecoder(rec.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHandleWebhook_JSON(t *testing.T) {
	leads := &fakeLeads{resp: trackdrive.Response{Status: http.StatusOK, Body: map[string]any{"lead_id": json.Number("12345678901234567")}}}
	sink := &fakeSheet{}
	engine := newTestEngine(leads, sink)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"first_name":"Jane","tcpa_consent_given":true,"phone":5551234}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Referer", "https://form.example/apply")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	if body["success"] != true || body["lead_id"] != json.Number("12345678901234567") {
		t.Fatalf("unexpected body %v", body)
	}
	if leads.last["ip_address"] != "192.0.2.1" || leads.last["source_url"] != "https://form.example/apply" {
		t.Fatalf("expected request-derived origin fields, got %v", leads.last)
	}
	if got := sink.rows[0][1]; got != "5551234" {
		t.Fatalf("expected phone cell 5551234, got %q", got)
	}
	if got := sink.rows[0][13]; got != "true" {
		t.Fatalf("expected consent cell true, got %q", got)
	}
}

func TestHandleWebhook_Form(t *testing.T) {
	leads := &fakeLeads{resp: trackdrive.Response{Status: http.StatusOK}}
	sink := &fakeSheet{}
	engine := newTestEngine(leads, sink)

	form := url.Values{"full_name": {"Jane Doe", "ignored"}, "email": {"j@x.com"}}
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sink.rows[0][0] != "Jane Doe" || sink.rows[0][2] != "j@x.com" {
		t.Fatalf("unexpected row %q", sink.rows[0])
	}
}

func TestHandleWebhook_RejectionStatusPassesThrough(t *testing.T) {
	leads := &fakeLeads{err: rejection422()}
	engine := newTestEngine(leads, &fakeSheet{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	detail, _ := body["trackdrive_error"].(map[string]any)
	if body["success"] != false || body["source"] != "trackdrive" || detail["error"] != "invalid phone" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleWebhook_NonObjectJSON(t *testing.T) {
	leads := &fakeLeads{}
	engine := newTestEngine(leads, &fakeSheet{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`[1,2,3]`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if leads.calls != 0 {
		t.Fatalf("expected no sink calls, got %d", leads.calls)
	}
}

func TestHandleWebhook_BodyTooLarge(t *testing.T) {
	leads := &fakeLeads{}
	engine := newTestEngine(leads, &fakeSheet{})

	big := `{"brief_description_of_your_situation":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if body := decodeResponse(t, rec); body["success"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleWebhook_EmptyBodyIsEmptyPayload(t *testing.T) {
	leads := &fakeLeads{resp: trackdrive.Response{Status: http.StatusOK}}
	sink := &fakeSheet{}
	engine := newTestEngine(leads, sink)

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Join(sink.rows[0], "") != "" {
		t.Fatalf("expected an all-empty row, got %q", sink.rows[0])
	}
}

func TestHandleWebhook_DetachedFromClientCancellation(t *testing.T) {
	leads := &fakeLeads{resp: trackdrive.Response{Status: http.StatusOK}}
	engine := newTestEngine(leads, &fakeSheet{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if leads.calls != 1 || leads.ctxErr != nil {
		t.Fatalf("expected sink call with live context, got calls=%d ctxErr=%v", leads.calls, leads.ctxErr)
	}
}
