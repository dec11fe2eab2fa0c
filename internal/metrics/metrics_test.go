package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := New("/dev/shm/dtmf_ctrl")
	r.Observe("ok", 5*time.Millisecond, 5, time.Unix(1700000000, 0))
	r.Observe("write_failed", 0, 0, time.Unix(1700000001, 0))

	expected := `
# HELP send_dtmf_attempts_total DTMF delivery attempts by outcome
# TYPE send_dtmf_attempts_total counter
send_dtmf_attempts_total{control_path="/dev/shm/dtmf_ctrl",outcome="ok"} 1
send_dtmf_attempts_total{control_path="/dev/shm/dtmf_ctrl",outcome="write_failed"} 1
# HELP send_dtmf_bytes_written_total Bytes written to the control path
# TYPE send_dtmf_bytes_written_total counter
send_dtmf_bytes_written_total{control_path="/dev/shm/dtmf_ctrl"} 5
# HELP send_dtmf_last_run_timestamp_seconds Unix time of the last delivery attempt
# TYPE send_dtmf_last_run_timestamp_seconds gauge
send_dtmf_last_run_timestamp_seconds{control_path="/dev/shm/dtmf_ctrl"} 1.700000001e+09
`
	err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected),
		"send_dtmf_attempts_total", "send_dtmf_bytes_written_total", "send_dtmf_last_run_timestamp_seconds")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(r.Gatherer(), "send_dtmf_open_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "send_dtmf.prom")
	r := New("/tmp/ctrl")
	r.Observe("path_not_found", 0, 0, time.Now())

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `send_dtmf_attempts_total{control_path="/tmp/ctrl",outcome="path_not_found"} 1`)
}

func TestRecorder_Handler(t *testing.T) {
	r := New("/tmp/ctrl")
	r.Observe("ok", time.Millisecond, 3, time.Now())

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `send_dtmf_attempts_total{control_path="/tmp/ctrl",outcome="ok"} 1`)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: "ok"},
		{err: domain.ErrMissingArgument, want: "missing_argument"},
		{err: fmt.Errorf("%w: 'X'", domain.ErrInvalidSequence), want: "invalid_sequence"},
		{err: domain.NewSendError(domain.ErrPathNotFound, "/x", nil), want: "path_not_found"},
		{err: domain.NewSendError(domain.ErrPermissionDenied, "/x", nil), want: "permission_denied"},
		{err: domain.NewSendError(domain.ErrOpenFailed, "/x", nil), want: "open_failed"},
		{err: domain.NewSendError(domain.ErrWriteFailed, "/x", nil), want: "write_failed"},
		{err: errors.New("other"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
