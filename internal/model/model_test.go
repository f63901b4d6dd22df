package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestTokenValidAt_Boundary(t *testing.T) {
    issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
    tok := Token{CreatedAt: issued, ExpiresAt: issued.Add(24 * time.Hour)}

    assert.True(t, tok.ValidAt(issued))
    assert.True(t, tok.ValidAt(issued.Add(24*time.Hour-time.Second)))
    assert.False(t, tok.ValidAt(issued.Add(24*time.Hour)))
    assert.False(t, tok.ValidAt(issued.Add(48*time.Hour)))
}

func TestActivityKind(t *testing.T) {
    assert.Equal(t, "login", ActivityLogin.String())
    assert.Equal(t, "training", ActivityTraining.String())
    assert.Equal(t, "inference", ActivityInference.String())
    assert.Equal(t, "ActivityKind(9)", ActivityKind(9).String())

    assert.True(t, ActivityInference.Valid())
    assert.False(t, ActivityKind(0).Valid())
    assert.False(t, ActivityKind(4).Valid())
}
