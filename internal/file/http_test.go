package file

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/azatkul/docvault/internal/auth"
)

func newTestRouter(service *Service, principal string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/v1")
	group.Use(func(c *gin.Context) {
		if principal != "" {
			auth.SetCurrentUser(c, auth.ContextUser{ID: uuid.NewString(), Email: principal})
		}
		c.Next()
	})
	RegisterRoutes(group, service)
	return router
}

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadEndpointRoundtrip(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), Options{})
	router := newTestRouter(service, "owner@example.com")

	body, contentType := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var rec Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	require.Equal(t, "notes.txt", rec.DisplayName)
	require.Equal(t, "owner@example.com", rec.OwnerEmail)
	require.Equal(t, int64(5), rec.SizeBytes)

	download := httptest.NewRequest(http.MethodGet, "/v1/files/"+rec.ID.String()+"/download", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, download)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "hello", rr.Body.String())
	require.Contains(t, rr.Header().Get("Content-Disposition"), "notes.txt")
}

func TestUploadEndpointQuotaExceeded(t *testing.T) {
	service := newTestServiceWithCeiling(newFakeCatalog(), newFakeBlobStore(), Options{}, 3)
	router := newTestRouter(service, "owner@example.com")

	body, contentType := multipartBody(t, "big.bin", "application/octet-stream", []byte("too large"))
	req := httptest.NewRequest(http.MethodPost, "/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInsufficientStorage, rr.Code)
	require.Contains(t, rr.Body.String(), "available_bytes")
}

func TestEndpointsRejectAnonymous(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), Options{})
	router := newTestRouter(service, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/files", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestShareEndpointStatusMapping(t *testing.T) {
	repo := newFakeCatalog()
	service := newTestService(repo, newFakeBlobStore(), Options{})

	rec, err := service.Upload(context.Background(), "owner@example.com", "doc.txt", "text/plain", []byte("x"))
	require.NoError(t, err)

	ownerRouter := newTestRouter(service, "owner@example.com")
	intruderRouter := newTestRouter(service, "intruder@example.com")

	share := func(router *gin.Engine, fileID, email string) *httptest.ResponseRecorder {
		payload := strings.NewReader(`{"email":"` + email + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/files/"+fileID+"/share", payload)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusForbidden, share(intruderRouter, rec.ID.String(), "friend@example.com").Code)
	require.Equal(t, http.StatusOK, share(ownerRouter, rec.ID.String(), "friend@example.com").Code)
	require.Equal(t, http.StatusConflict, share(ownerRouter, rec.ID.String(), "friend@example.com").Code)
	require.Equal(t, http.StatusNotFound, share(ownerRouter, uuid.NewString(), "friend@example.com").Code)
	require.Equal(t, http.StatusBadRequest, share(ownerRouter, "not-a-uuid", "friend@example.com").Code)
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), Options{})
	router := newTestRouter(service, "me@example.com")

	req := httptest.NewRequest(http.MethodGet, "/v1/files/search", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/files/search?q=reports", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
