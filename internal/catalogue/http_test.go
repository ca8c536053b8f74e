// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package catalogue

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientFindByIDDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/programs", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":42,"startAt":1000,"endAt":2000,"channelType":"GR","name":"News"}]`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 100)
	got, err := client.FindByID(t.Context(), 42, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(42), got[0].ID)
	require.Equal(t, "News", got[0].Name)
}

func TestHTTPClientFindByIDNon200ReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 100)
	_, err := client.FindByID(t.Context(), 1, false)
	require.Error(t, err)
}

func TestHTTPClientFindByRuleEncodesSearchOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/programs/search", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "news", q.Get("keyword"))
		require.Equal(t, "true", q.Get("gr"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	keyword := "news"
	gr := true
	client := NewHTTPClient(srv.URL, 100)
	got, err := client.FindByRule(t.Context(), SearchOption{Keyword: &keyword, GR: &gr})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestHTTPClientFindByRuleEncodesDurationBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "30", q.Get("durationMin"))
		require.Equal(t, "90", q.Get("durationMax"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	min, max := 30, 90
	client := NewHTTPClient(srv.URL, 100)
	_, err := client.FindByRule(t.Context(), SearchOption{DurationMinMin: &min, DurationMinMax: &max})
	require.NoError(t, err)
}
