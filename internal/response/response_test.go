package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFailEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"group_name": "wajib"})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest || body.Error == nil || body.Error.Code != ErrValidation {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if body.Error.Message != GetMessage(ErrValidation) || body.Error.Fields["group_name"] != "wajib" {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Metadata.RequestID != "req-123" || rec.Header().Get("X-Request-ID") != "req-123" {
		t.Fatalf("request id = %q", body.Metadata.RequestID)
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []ErrCode{
		ErrInvalidCredentials, ErrSessionInvalidated, ErrTokenRequired, ErrTokenInvalid, ErrTokenExpired,
		ErrValidation, ErrInvalidID, ErrNotFound, ErrFeatureDisabled,
		ErrNoActiveClass, ErrClassNotActive, ErrNoSubmissions, ErrFileNotFound, ErrFileRequired,
		ErrFileTooLarge, ErrTooManyFiles, ErrStorageFailure, ErrInvalidFormBody,
		ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		if GetMessage(code) == fallback {
			t.Errorf("%s has no message", code)
		}
	}
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	for _, incoming := range []string{"", "ada spasi", "<script>", strings.Repeat("a", maxRequestIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(HeaderRequestID, incoming)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get(HeaderRequestID)
		if got == incoming || len(got) != 36 {
			t.Errorf("incoming %q: request id = %q, want fresh uuid", incoming, got)
		}
		if rec.Body.String() != got {
			t.Errorf("incoming %q: context id %q != header %q", incoming, rec.Body.String(), got)
		}
	}
}
