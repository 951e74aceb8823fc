package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExpirer struct {
	calls int
	n     int64
	err   error
}

func (s *stubExpirer) ExpireOverdue(context.Context) (int64, error) {
	s.calls++
	return s.n, s.err
}

func TestLicenseExpireHandler_RunsSweep(t *testing.T) {
	expirer := &stubExpirer{n: 3}
	h := NewLicenseExpireHandler(expirer, zap.NewNop())

	task, err := NewLicenseExpireTask()
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 1, expirer.calls)
}

func TestLicenseExpireHandler_PropagatesSweepError(t *testing.T) {
	expirer := &stubExpirer{err: errors.New("db down")}
	h := NewLicenseExpireHandler(expirer, zap.NewNop())

	task, err := NewLicenseExpireTask()
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestLicenseExpireHandler_RejectsForeignTask(t *testing.T) {
	expirer := &stubExpirer{}
	h := NewLicenseExpireHandler(expirer, zap.NewNop())

	err := h.ProcessTask(context.Background(), asynq.NewTask("other:task", nil))
	require.Error(t, err)
	assert.Zero(t, expirer.calls)
}

func TestLicenseExpireHandler_BadPayloadSkipsRetry(t *testing.T) {
	expirer := &stubExpirer{}
	h := NewLicenseExpireHandler(expirer, zap.NewNop())

	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeLicenseExpire, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, expirer.calls)
}
