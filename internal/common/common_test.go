package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, "anonboard")

	token, err := issuer.GenerateToken("64b7f0c2a1", "root_admin", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1", claims.UserID)
	assert.Equal(t, "root_admin", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, "anonboard")
	token, err := issuer.GenerateToken("id1", "alice", true)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", time.Hour, "anonboard")
		_, err := other.ValidToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer("test-secret", time.Hour, "anonboard")
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ValidToken("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret configured", func(t *testing.T) {
		_, err := NewTokenIssuer("", time.Hour, "anonboard").GenerateToken("id1", "alice", true)
		require.Error(t, err)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.NoError(t, CheckPassword("Password123", hash))
	assert.Error(t, CheckPassword("password123", hash))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "alice", want: "alice"},
		{in: "  bob_99  ", want: "bob_99"},
		{in: "ab", wantErr: true},
		{in: strings.Repeat("a", 31), wantErr: true},
		{in: strings.Repeat("a", 30), want: strings.Repeat("a", 30)},
		{in: "bad-name", wantErr: true},
		{in: "spa ce", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ValidateUsername(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Password1"))
	assert.ErrorIs(t, ValidatePassword("Pass1"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePassword("password1"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePassword("Passwordx"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePassword("P1"+strings.Repeat("a", 80)), ErrInvalidInput)
	// only A-Z counts as uppercase
	assert.ErrorIs(t, ValidatePassword("ÉÉÉÉÉÉÉ1"), ErrInvalidInput)
	assert.NoError(t, ValidatePassword("ÉÉÉÉÉÉÉ1A"))
}

func TestRequestValidator(t *testing.T) {
	type body struct {
		Username string `validate:"required,min=3,max=30,username"`
		Vote     string `validate:"required,oneof=upvote downvote love"`
	}
	v := NewRequestValidator()

	assert.NoError(t, v.ValidateStruct(&body{Username: "alice", Vote: "love"}))

	err := v.ValidateStruct(&body{Username: "al!ce", Vote: "love"})
	require.ErrorIs(t, err, ErrInvalidInput)

	fields := v.Fields(&body{Username: "alice", Vote: "meh"})
	require.Len(t, fields, 1)
	assert.Equal(t, "Vote", fields[0].Field)
	assert.Contains(t, fields[0].Message, "upvote downvote love")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewValidationError(ReasonSpam, "spam"), http.StatusBadRequest},
		{NewError(ErrToxicContent, "toxic"), http.StatusBadRequest},
		{NewError(ErrCannotDeleteSelf, "self"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", NewError(ErrNotFound, "missing")), http.StatusNotFound},
		{NewError(ErrConflict, "dup"), http.StatusConflict},
		{NewError(ErrUnauthenticated, "no token"), http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{NewError(ErrForbidden, "revoked"), http.StatusForbidden},
		{errors.New("mongo is down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "error: %v", tc.err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer abc.def", want: "abc.def"},
		{header: "", wantErr: true},
		{header: "Token abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "Bearer a b", wantErr: true},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, err := BearerToken(r)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnauthenticated, "header %q", tc.header)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestDetectImageFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ImageFormat
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), ImageFormatPNG},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), ImageFormatJPEG},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), ImageFormatGIF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectImageFormat(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.IsValid())
		})
	}

	_, err := DetectImageFormat([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, ImageFormat("webm").IsValid())
}
