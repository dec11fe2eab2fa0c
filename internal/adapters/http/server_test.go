package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	senddtmf "github.com/aretw0/senddtmf"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/internal/service"
	"github.com/aretw0/senddtmf/internal/testutils"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	rep    ctrlfile.Report
	err    error
	called bool
	digits string
}

func (s *stubSender) Send(ctx context.Context, digits string) (ctrlfile.Report, error) {
	s.called = true
	s.digits = digits
	return s.rep, s.err
}

func newTestHandler(t *testing.T, sender Sender, opts ...Option) http.Handler {
	t.Helper()

	handler, err := NewHandler(sender, opts...)
	require.NoError(t, err)
	return handler
}

func postDtmf(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/dtmf", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler(t, &stubSender{})

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetVersion(t *testing.T) {
	handler := newTestHandler(t, &stubSender{})

	req, _ := http.NewRequest("GET", "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, senddtmf.Version, resp["version"])
	assert.Equal(t, "send-dtmf", resp["app"])
}

func TestGetOpenAPISpec(t *testing.T) {
	handler := newTestHandler(t, &stubSender{})

	req, _ := http.NewRequest("GET", "/openapi.yaml", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/dtmf")
}

func TestSendDtmf(t *testing.T) {
	sender := &stubSender{rep: ctrlfile.Report{Written: 5, Blocked: true}}
	handler := newTestHandler(t, sender)

	rr := postDtmf(handler, `{"digits":"*123#"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp DtmfResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, DtmfResponse{Status: "sent", Digits: "*123#", Bytes: 5, Blocked: true}, resp)
	assert.Equal(t, "*123#", sender.digits)
}

func TestSendDtmf_RejectedByValidation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"missing digits", `{}`, "application/json"},
		{"empty digits", `{"digits":""}`, "application/json"},
		{"digits not a string", `{"digits":123}`, "application/json"},
		{"malformed json", `{"digits":`, "application/json"},
		{"too long", fmt.Sprintf(`{"digits":%q}`, strings.Repeat("1", 300)), "application/json"},
		{"wrong content type", `digits=123`, "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &stubSender{}
			handler := newTestHandler(t, sender)

			req := httptest.NewRequest(http.MethodPost, "/api/dtmf", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, sender.called, "invalid requests must not reach the control file")

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request", resp.Outcome)
			assert.Equal(t, domain.ExitUsage, resp.ExitCode)
		})
	}
}

func TestSendDtmf_FailureStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		outcome string
	}{
		{"invalid sequence", fmt.Errorf("%w: %q at offset 2", domain.ErrInvalidSequence, "X"), http.StatusBadRequest, "invalid_sequence"},
		{"path not found", domain.NewSendError(domain.ErrPathNotFound, "/dev/shm/dtmf_ctrl", syscall.ENOENT), http.StatusServiceUnavailable, "path_not_found"},
		{"permission denied", domain.NewSendError(domain.ErrPermissionDenied, "/dev/shm/dtmf_ctrl", syscall.EACCES), http.StatusForbidden, "permission_denied"},
		{"open failed", domain.NewSendError(domain.ErrOpenFailed, "/dev/shm/dtmf_ctrl", syscall.EISDIR), http.StatusBadGateway, "open_failed"},
		{"no reader in time", domain.NewSendError(domain.ErrOpenFailed, "/dev/shm/dtmf_ctrl", context.DeadlineExceeded), http.StatusGatewayTimeout, "open_failed"},
		{"write failed", domain.NewSendError(domain.ErrWriteFailed, "/dev/shm/dtmf_ctrl", syscall.EPIPE), http.StatusBadGateway, "write_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &stubSender{err: tt.err})

			rr := postDtmf(handler, `{"digits":"*123#"}`)
			assert.Equal(t, tt.status, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.outcome, resp.Outcome)
			assert.Equal(t, domain.ExitCode(tt.err), resp.ExitCode)
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, StatusCode(domain.ErrMissingArgument))
	assert.Equal(t, http.StatusBadRequest, StatusCode(errors.New("unexpected")))
	assert.Equal(t, http.StatusGatewayTimeout,
		StatusCode(domain.NewSendError(domain.ErrOpenFailed, "/p", context.Canceled)))
}

func TestSendDtmf_WritesControlFile(t *testing.T) {
	path := testutils.MakeFIFO(t)
	r := testutils.AttachReader(t, path)
	rec := metrics.New(path)
	svc := service.New(ctrlfile.New(path, ctrlfile.WithSettle(0)), service.WithRecorder(rec))
	handler := newTestHandler(t, svc, WithMetrics(rec))

	rr := postDtmf(handler, `{"digits":"*123#"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "*123#", string(got))

	req, _ := http.NewRequest("GET", "/metrics", nil)
	metricsRR := httptest.NewRecorder()
	handler.ServeHTTP(metricsRR, req)
	assert.Equal(t, http.StatusOK, metricsRR.Code)
	assert.Contains(t, metricsRR.Body.String(), `send_dtmf_attempts_total{control_path="`+path+`",outcome="ok"} 1`)
}

func TestSendDtmf_ControlFileMissing(t *testing.T) {
	svc := service.New(ctrlfile.New(filepath.Join(t.TempDir(), "absent")))
	handler := newTestHandler(t, svc)

	rr := postDtmf(handler, `{"digits":"1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSendDtmf_NoReaderBeforeTimeout(t *testing.T) {
	path := testutils.MakeFIFO(t)
	testutils.ReleaseBlockedOpen(t, path)
	svc := service.New(ctrlfile.New(path, ctrlfile.WithOpenTimeout(50*time.Millisecond)))
	handler := newTestHandler(t, svc)

	rr := postDtmf(handler, `{"digits":"1"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, domain.ExitOpenFailed, resp.ExitCode)
}

func TestMetrics_NotServedWithoutRecorder(t *testing.T) {
	handler := newTestHandler(t, &stubSender{})

	req, _ := http.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
