package nexus_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
	"github.com/blackwell-systems/modmirror/internal/nexus"
)

type gqlRequest struct {
	Query     string `json:"query"`
	Variables struct {
		UploaderID string `json:"uploaderId"`
		Count      int    `json:"count"`
		Offset     int    `json:"offset"`
	} `json:"variables"`
}

func newClient(t *testing.T, h http.Handler, pageSize int) *nexus.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hc := httpclient.New(httpclient.Config{MaxRetries: 1, Logger: logger})
	return nexus.New(hc, nexus.Config{
		APIKey:     "secret",
		UploaderID: "42",
		GraphQLURL: srv.URL + "/v2/graphql",
		APIBase:    srv.URL,
		PageSize:   pageSize,
		Logger:     logger,
	})
}

func node(i int) string {
	return fmt.Sprintf(`{"uid":"%d","modId":%d,"name":"Mod %d","summary":"s","description":null,"pictureUrl":"https://img/%d.png","game":{"domainName":"skyrim"}}`, 1000+i, i, i, i)
}

func TestFetchCatalog_Paginates(t *testing.T) {
	var offsets []int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "42", req.Variables.UploaderID)
		offsets = append(offsets, req.Variables.Offset)

		if req.Variables.Count == 1 {
			fmt.Fprint(w, `{"data":{"mods":{"totalCount":5,"nodes":[`+node(1)+`]}}}`)
			return
		}
		var nodes []string
		for i := req.Variables.Offset + 1; i <= min(req.Variables.Offset+req.Variables.Count, 5); i++ {
			nodes = append(nodes, node(i))
		}
		fmt.Fprintf(w, `{"data":{"mods":{"totalCount":5,"nodes":[%s]}}}`, strings.Join(nodes, ","))
	})

	c := newClient(t, h, 2)
	cat, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, cat.Total)
	assert.Equal(t, []int{0, 0, 2, 4}, offsets)
	require.Len(t, cat.Items, 5)
	assert.Empty(t, cat.DroppedPages)

	first := cat.Items[0]
	assert.Equal(t, "1001", first.UID)
	assert.Equal(t, 1, first.ModID)
	assert.Equal(t, "Mod 1", first.Name)
	assert.Equal(t, "skyrim", first.Domain)
	assert.Equal(t, "", first.Description)
	assert.Equal(t, "s", first.RawDescription())
}

func TestFetchCatalog_FirstPageErrorIsFatal(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"bad uploader"}]}`)
	})

	_, err := newClient(t, h, 50).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, nexus.ErrGraphQL))
}

func TestFetchCatalog_DropsFailedPage(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch {
		case req.Variables.Count == 1:
			fmt.Fprint(w, `{"data":{"mods":{"totalCount":3,"nodes":[]}}}`)
		case req.Variables.Offset == 0:
			fmt.Fprintf(w, `{"data":{"mods":{"totalCount":3,"nodes":[%s,%s]}}}`, node(1), node(2))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	cat, err := newClient(t, h, 2).FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Items, 2)
	assert.Equal(t, []int{2}, cat.DroppedPages)
}

func TestListFiles(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games/skyrim/mods/7/files.json", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		fmt.Fprint(w, `{"files":[
			{"file_id":1,"file_name":"a-7-1.zip","version":"1.0","category_name":"MAIN","uploaded_timestamp":100},
			{"file_id":2,"file_name":"b.zip","version":null,"category_name":"OPTIONAL"}
		]}`)
	})

	files, err := newClient(t, h, 50).ListFiles(context.Background(), "skyrim", 7)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 1, files[0].FileID)
	assert.Equal(t, "a-7-1.zip", files[0].FileName)
	assert.Equal(t, "1.0", files[0].Version)
	assert.Equal(t, "MAIN", files[0].CategoryName)
	assert.Equal(t, int64(100), files[0].UploadedTimestamp)
	assert.Equal(t, "", files[1].Version)
	assert.Equal(t, int64(0), files[1].UploadedTimestamp)
}

func TestListFiles_NotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := newClient(t, h, 50).ListFiles(context.Background(), "skyrim", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nexus.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, httpclient.StatusCode(err))
}

func TestChangelogs(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games/skyrim/mods/7/changelogs.json", r.URL.Path)
		fmt.Fprint(w, `{"1.0":["first"],"1.1":["fix a","fix b"]}`)
	})

	logs, err := newClient(t, h, 50).Changelogs(context.Background(), "skyrim", 7)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"1.0": {"first"},
		"1.1": {"fix a", "fix b"},
	}, logs)
}

func TestChangelogs_EmptyArray(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	logs, err := newClient(t, h, 50).Changelogs(context.Background(), "skyrim", 7)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDownloadLink(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games/skyrim/mods/7/files/3/download_link.json", r.URL.Path)
		fmt.Fprint(w, `[{"name":"Nexus CDN","short_name":"CDN","URI":"https://cdn/x.zip?sig=1"},{"URI":"https://other"}]`)
	})

	uri, err := newClient(t, h, 50).DownloadLink(context.Background(), "skyrim", 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.zip?sig=1", uri)
}

func TestDownloadLink_Empty(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := newClient(t, h, 50).DownloadLink(context.Background(), "skyrim", 7, 3)
	assert.Error(t, err)
}
