package gcs

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := newClient(context.Background(),
		config.GCSConfig{BucketName: "its27-media", PublicBaseURL: "https://cdn.its27jewelry.com/"},
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

type uploadCapture struct {
	path       string
	uploadType string
	objectName string
	mediaType  string
	body       string
}

func captureUpload(t *testing.T, r *http.Request) uploadCapture {
	t.Helper()
	got := uploadCapture{path: r.URL.Path, uploadType: r.URL.Query().Get("uploadType")}

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	reader := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := reader.NextPart()
	require.NoError(t, err)
	var meta struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(metaPart).Decode(&meta))
	got.objectName = meta.Name

	mediaPart, err := reader.NextPart()
	require.NoError(t, err)
	got.mediaType = mediaPart.Header.Get("Content-Type")
	b, err := io.ReadAll(mediaPart)
	require.NoError(t, err)
	got.body = string(b)
	return got
}

func TestUploadSendsObjectAndReturnsPublicURL(t *testing.T) {
	var got uploadCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = captureUpload(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"products/1700000000000-anillo.jpg","bucket":"its27-media"}`))
	}))
	defer srv.Close()

	url, err := newTestClient(t, srv).Upload(context.Background(), "", "products/1700000000000-anillo.jpg", "image/jpeg", strings.NewReader("jpegdata"))
	require.NoError(t, err)

	assert.Equal(t, "/upload/storage/v1/b/its27-media/o", got.path)
	assert.Equal(t, "multipart", got.uploadType)
	assert.Equal(t, "products/1700000000000-anillo.jpg", got.objectName)
	assert.Equal(t, "image/jpeg", got.mediaType)
	assert.Equal(t, "jpegdata", got.body)
	assert.Equal(t, "https://cdn.its27jewelry.com/its27-media/products/1700000000000-anillo.jpg", url)
}

func TestUploadSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Upload(context.Background(), "", "x.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestUploadRequiresObject(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestClient(t, srv).Upload(context.Background(), "", "", "image/png", strings.NewReader("x"))
	require.Error(t, err)
}

func TestDeleteToleratesMissingObject(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"No such object"}}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv).Delete(context.Background(), "", "products/gone.jpg"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/b/its27-media/o/products%2Fgone.jpg", gotPath)
}

func TestDeleteReportsOtherFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))
	defer srv.Close()

	assert.Error(t, newTestClient(t, srv).Delete(context.Background(), "", "products/a.jpg"))
}

func TestPingListsBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/b/its27-media/o" || r.URL.Query().Get("maxResults") != "1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"storage#objects"}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv).Ping(context.Background()))
}

func TestPublicURLRoundTrip(t *testing.T) {
	client := &Client{bucket: "its27-media", publicBase: "https://cdn.example"}
	url := client.PublicURL("", "brand/1700000000000-logo nuevo.png")
	assert.Equal(t, "https://cdn.example/its27-media/brand/1700000000000-logo%20nuevo.png", url)

	object, ok := client.ObjectFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "brand/1700000000000-logo nuevo.png", object)

	_, ok = client.ObjectFromURL("https://picsum.photos/800/1000?random=101")
	assert.False(t, ok)
}

func TestNilClientIsNotInitialized(t *testing.T) {
	var client *Client
	assert.ErrorIs(t, client.Ping(context.Background()), errNotInitialized)
	assert.Empty(t, client.DefaultBucket())
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := newClient(context.Background(), config.GCSConfig{BucketName: " "}, option.WithoutAuthentication())
	assert.Error(t, err)
}
