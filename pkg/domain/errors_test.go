package domain

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "Success", err: nil, want: ExitOK},
		{name: "Missing Argument", err: ErrMissingArgument, want: ExitUsage},
		{name: "Invalid Sequence", err: fmt.Errorf("strict: %w", ErrInvalidSequence), want: ExitUsage},
		{name: "Path Not Found", err: NewSendError(ErrPathNotFound, "/x", syscall.ENOENT), want: ExitPathNotFound},
		{name: "Permission Denied", err: NewSendError(ErrPermissionDenied, "/x", syscall.EACCES), want: ExitPermissionDenied},
		{name: "Open Failed", err: NewSendError(ErrOpenFailed, "/x", syscall.EIO), want: ExitOpenFailed},
		{name: "Write Failed", err: NewSendError(ErrWriteFailed, "/x", syscall.EPIPE), want: ExitWriteFailed},
		{name: "Unknown", err: errors.New("unknown flag: --nope"), want: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestSendError_Unwrap(t *testing.T) {
	err := fmt.Errorf("send: %w", NewSendError(ErrWriteFailed, "/dev/shm/dtmf_ctrl", syscall.EPIPE))

	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, syscall.EPIPE)
	assert.NotErrorIs(t, err, ErrOpenFailed)

	var se *SendError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, "/dev/shm/dtmf_ctrl", se.Path)
	}
	assert.Equal(t, "send: /dev/shm/dtmf_ctrl: write failed: broken pipe", err.Error())
}

func TestSendError_NoCause(t *testing.T) {
	err := NewSendError(ErrPathNotFound, "/missing", nil)
	assert.Equal(t, "/missing: control path does not exist", err.Error())
	assert.ErrorIs(t, err, ErrPathNotFound)
}
