package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/pipeline"
)

type stubService struct {
	result   domain.ComparisonResult
	fields   domain.DocumentFields
	err      error
	calls    int
	strategy string
	claim    domain.UserClaim
	image    []byte
	reqID    string
}

func (s *stubService) ProcessDocument(ctx context.Context, image []byte, strategy string) (domain.DocumentFields, error) {
	s.calls++
	s.image, s.strategy = image, strategy
	s.reqID = pipeline.RequestIDFromContext(ctx)
	return s.fields, s.err
}

func (s *stubService) Verify(ctx context.Context, image []byte, strategy string, claim domain.UserClaim) (domain.ComparisonResult, domain.DocumentFields, error) {
	s.calls++
	s.image, s.strategy, s.claim = image, strategy, claim
	s.reqID = pipeline.RequestIDFromContext(ctx)
	return s.result, s.fields, s.err
}

func newRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(svc, "text-relay", nil).RegisterRoutes(router)
	return router
}

func buildMultipartBody(t *testing.T, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="scan"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func claimForm() map[string]string {
	return map[string]string{
		"first_name":    "John",
		"last_name":     "Smith",
		"street_name":   "Coventry Avenue",
		"street_number": "2450",
		"postal_code":   "78521",
		"city":          "Brownsville",
	}
}

func post(t *testing.T, router *gin.Engine, path, contentType string, fields map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := buildMultipartBody(t, contentType, []byte{0x89, 'P', 'N', 'G'}, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestProcessDocument(t *testing.T) {
	cases := []struct {
		verified bool
		message  string
	}{
		{true, MessageVerified},
		{false, MessageRejected},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.verified), func(t *testing.T) {
			svc := &stubService{result: domain.ComparisonResult{IsVerified: tc.verified}}
			resp := post(t, newRouter(svc), "/process_document", "image/png", claimForm(), map[string]string{"X-Request-ID": "req-7"})

			require.Equal(t, http.StatusOK, resp.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tc.verified, body["is_verified"])
			assert.Equal(t, tc.message, body["message"])
			assert.Equal(t, "req-7", body["request_id"])
			assert.Equal(t, "req-7", svc.reqID)
			assert.Equal(t, "text-relay", svc.strategy)
			assert.Equal(t, "Coventry Avenue", svc.claim.StreetName)
			assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, svc.image)
		})
	}
}

func TestProcessDocumentStrategyField(t *testing.T) {
	svc := &stubService{}
	form := claimForm()
	form["processing"] = "llm"

	resp := post(t, newRouter(svc), "/process_document", "image/jpeg", form, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "llm", svc.strategy)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

func TestProcessDocumentRejectsUnsupportedContentType(t *testing.T) {
	svc := &stubService{}
	resp := post(t, newRouter(svc), "/process_document", "application/pdf", claimForm(), nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, svc.calls)
}

func TestProcessDocumentRequiresFile(t *testing.T) {
	svc := &stubService{}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("first_name", "John"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/process_document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, svc.calls)
}

func TestProcessDocumentRejectsOversizedUpload(t *testing.T) {
	svc := &stubService{}
	body, ct := buildMultipartBody(t, "image/png", make([]byte, MaxUploadSize+1024), claimForm())
	req := httptest.NewRequest(http.MethodPost, "/process_document", body)
	req.Header.Set("Content-Type", ct)
	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Contains(t, resp.Body.String(), "file too large")
	assert.Zero(t, svc.calls)
}

func TestErrorStatuses(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"configuration": {fmt.Errorf("%w: unknown strategy", domain.ErrConfiguration), http.StatusBadRequest},
		"claim":         {fmt.Errorf("%w: claim fields required", domain.ErrComparison), http.StatusBadRequest},
		"decode":        {fmt.Errorf("%w: bad image", domain.ErrDecode), http.StatusUnprocessableEntity},
		"ocr":           {fmt.Errorf("%w: engine down", domain.ErrOCR), http.StatusBadGateway},
		"extraction":    {fmt.Errorf("%w: missing keys document_date", domain.ErrExtraction), http.StatusBadGateway},
		"deadline":      {fmt.Errorf("%w: %w", domain.ErrExtraction, context.DeadlineExceeded), http.StatusGatewayTimeout},
		"unknown":       {fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := post(t, newRouter(&stubService{err: tc.err}), "/process_document", "image/png", claimForm(), nil)
			assert.Equal(t, tc.want, resp.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.NotContains(t, body, "is_verified")
			assert.Contains(t, body["error"], tc.err.Error())
		})
	}
}

func TestExtract(t *testing.T) {
	svc := &stubService{fields: domain.DocumentFields{FirstName: "John", DocumentDate: "2024-01-31"}}
	resp := post(t, newRouter(svc), "/v1/documents/extract", "image/png", map[string]string{"processing": "direct-vision"}, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fields))
	assert.Len(t, fields, len(domain.FieldSpecs))
	assert.Equal(t, "John", fields["first_name"])
	assert.Equal(t, "", fields["bank_city"])
	assert.Equal(t, "direct-vision", svc.strategy)
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}
