package attendance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
)

func newScanRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := qrtoken.NewCodec("scan-secret", 24*time.Hour)
	reg := testRegistration(codec, "reg-1", "E1")
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{"reg-1": reg}},
		newFakeAttendance(), &fakeAudit{}, nil)

	router := gin.New()
	router.POST("/events/:eventId/scan-qr", NewHandler(svc, nil).Scan)
	return router, reg.QRToken
}

func postScan(router *gin.Engine, eventID string, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/scan-qr", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScanEndpointStatusCodes(t *testing.T) {
	router, token := newScanRouter(t)

	cases := []struct {
		name     string
		eventID  string
		body     map[string]any
		wantCode int
	}{
		{"valid scan", "E1", map[string]any{"qrCodeData": token}, http.StatusOK},
		{"duplicate is still 200", "E1", map[string]any{"qrCodeData": token}, http.StatusOK},
		{"missing payload", "E1", map[string]any{}, http.StatusBadRequest},
		{"garbage payload", "E1", map[string]any{"qrCodeData": "garbage"}, http.StatusBadRequest},
		{"wrong event", "E2", map[string]any{"qrCodeData": token}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postScan(router, tc.eventID, tc.body)
			if w.Code != tc.wantCode {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestScanEndpointBody(t *testing.T) {
	router, token := newScanRouter(t)

	first := postScan(router, "E1", map[string]any{"qrCodeData": token, "scannedBy": "gate-a"})
	var envelope struct {
		Success bool        `json:"success"`
		Data    ScanOutcome `json:"data"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.Status != MarkedPresent {
		t.Errorf("first scan response = %+v", envelope)
	}
	if envelope.Data.Participant.Name != "Asha" {
		t.Errorf("participant = %+v", envelope.Data.Participant)
	}

	second := postScan(router, "E1", map[string]any{"qrCodeData": token})
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != AlreadyPresent {
		t.Errorf("second scan status = %s, want already_present", envelope.Data.Status)
	}
}
