package brewerydb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Success(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/beer/random", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"id": "oTaBU8",
				"name": "Pliny the Elder",
				"abv": "8",
				"style": {"name": "Imperial IPA"},
				"breweries": [{"name": "Russian River Brewing Company", "established": "1997"}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	beer, err := client.Random(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, "oTaBU8", beer.ID)
	assert.Equal(t, "Pliny the Elder", beer.Name)
	require.NotNil(t, beer.Style)
	assert.Equal(t, "Imperial IPA", beer.Style.Name)
	assert.Equal(t, "Russian River Brewing Company", beer.PrimaryBrewery())

	assert.Equal(t, []string{"secret-key"}, gotQuery["key"])
	assert.Equal(t, []string{"Y"}, gotQuery["withBreweries"])
}

func TestRandom_WithoutBreweries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("withBreweries"))
		_, _ = w.Write([]byte(`{"status": "success", "data": {"id": "x1", "name": "Mystery"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	beer, err := client.Random(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, "x1", beer.ID)
}

func TestRandom_StatusNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "failure"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	_, err := client.Random(context.Background(), false)

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pliny elder", q.Get("q"))
		assert.Equal(t, "beer", q.Get("type"))
		assert.Equal(t, "Y", q.Get("withBreweries"))
		assert.Equal(t, "secret-key", q.Get("key"))
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": [
				{"id": "b1", "name": "Pliny the Elder"},
				{"id": "b2", "name": "Pliny the Younger"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	beers, err := client.Search(context.Background(), "pliny elder")

	require.NoError(t, err)
	require.Len(t, beers, 2)
	assert.Equal(t, "b1", beers[0].ID)
	assert.Equal(t, "b2", beers[1].ID)
}

func TestSearch_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "data": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	beers, err := client.Search(context.Background(), "nonexistent")

	require.NoError(t, err)
	assert.Empty(t, beers)
}

func TestGet_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	_, err := client.Search(context.Background(), "pliny")

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestGet_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "secret-key", 1)
	_, err := client.Search(context.Background(), "pliny")

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestGet_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "succ`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5)
	_, err := client.Random(context.Background(), false)

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
