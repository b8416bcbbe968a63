package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindArtworkURL_UpgradesThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "song", r.URL.Query().Get("entity"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "Radiohead Creep", r.URL.Query().Get("term"))
		w.Write([]byte(`{"results":[{"artworkUrl100":"https://img.example/cover/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := NewITunesClient()
	c.baseURL = server.URL

	url := c.FindArtworkURL(context.Background(), "Radiohead", "Creep")
	assert.Equal(t, "https://img.example/cover/512x512bb.jpg", url)
}

func TestFindArtworkURL_MissIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	c := NewITunesClient()
	c.baseURL = server.URL

	assert.Empty(t, c.FindArtworkURL(context.Background(), "Nobody", "Nothing"))
}

func TestFindArtworkURL_ServerErrorIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewITunesClient()
	c.baseURL = server.URL

	assert.Empty(t, c.FindArtworkURL(context.Background(), "a", "b"))
}

func TestFindArtworkURL_EmptyQuerySkipsCall(t *testing.T) {
	c := NewITunesClient()
	c.baseURL = "http://127.0.0.1:0" // недостижимо: вызова быть не должно

	assert.Empty(t, c.FindArtworkURL(context.Background(), "", " "))
}
