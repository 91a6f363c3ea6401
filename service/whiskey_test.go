package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func scoreOf(v float64) *float64 {
	return &v
}

func TestValidateWhiskeyInput(t *testing.T) {
	tests := []struct {
		name     string
		req      addWhiskeyRequest
		expected string
	}{
		{
			name:     "complete entry",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(8)},
			expected: "",
		},
		{
			name:     "missing name",
			req:      addWhiskeyRequest{Proof: "90", Score: scoreOf(8)},
			expected: MsgMissingWhiskey,
		},
		{
			name:     "missing proof",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Score: scoreOf(8)},
			expected: MsgMissingWhiskey,
		},
		{
			name:     "missing score",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90"},
			expected: MsgMissingWhiskey,
		},
		{
			name:     "score of zero rejected",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(0)},
			expected: MsgScoreOutOfRange,
		},
		{
			name:     "score above ten rejected",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(11)},
			expected: MsgScoreOutOfRange,
		},
		{
			name:     "lower bound accepted",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(1)},
			expected: "",
		},
		{
			name:     "upper bound accepted",
			req:      addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(10)},
			expected: "",
		},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, validateWhiskeyInput(tc.req), "%s failed", tc.name)
	}
}

func TestAddWhiskeyRejectsBadScores(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := NewAPI(testTokenService("test-secret", 0))
	router := gin.New()
	router.POST("/api/user-whiskey", api.AddWhiskey)

	tests := []struct {
		name       string
		body       string
		expMessage string
	}{
		{
			name:       "score zero",
			body:       `{"name":"Buffalo Trace","proof":"90","score":0}`,
			expMessage: MsgScoreOutOfRange,
		},
		{
			name:       "score eleven",
			body:       `{"name":"Buffalo Trace","proof":"90","score":11}`,
			expMessage: MsgScoreOutOfRange,
		},
		{
			name:       "score absent",
			body:       `{"name":"Buffalo Trace","proof":"90"}`,
			expMessage: MsgMissingWhiskey,
		},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/user-whiskey", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s failed, wrong status", tc.name)
		body := make(map[string]interface{})
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "%s failed decoding body", tc.name)
		assert.Equal(t, tc.expMessage, body["message"], "%s failed, wrong message", tc.name)
	}
}

func TestAddWhiskeyScoreBounds(t *testing.T) {
	// the whole inclusive range must pass validation, everything just outside must not
	for score := 1; score <= 10; score++ {
		req := addWhiskeyRequest{Name: "Buffalo Trace", Proof: "90", Score: scoreOf(float64(score))}
		assert.Empty(t, validateWhiskeyInput(req), fmt.Sprintf("score %d should be valid", score))
	}
}
