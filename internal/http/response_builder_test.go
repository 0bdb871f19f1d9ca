package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerRecordChanged("goals", "deleted").
		TriggerFormReset().
		TriggerSuccessNotification("Goal deleted").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{`"record:changed"`, `"kind":"goals"`, `"op":"deleted"`, `"form:reset"`, `"type":"success"`, `"duration":3000`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusUnprocessableEntity, `<b>bad</b>`).Write(w)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<b>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
	}
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()
	SuccessResponse("bills", "created", "Bill saved").Write(w)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bill saved") {
		t.Errorf("status=%d body=%s", w.Code, w.Body.String())
	}
}
