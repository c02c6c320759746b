package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	active := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, active.IsExpired())

	expired := &Session{ExpiresAt: time.Now().Add(-time.Hour)}
	assert.True(t, expired.IsExpired())
}

func TestSession_Touch(t *testing.T) {
	s := &Session{}
	s.Touch()
	assert.False(t, s.LastSeenAt.IsZero())
}
