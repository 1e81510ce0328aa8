package nexus

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
	"github.com/blackwell-systems/modmirror/internal/model"
)

const modsQuery = `query GetUserMods($uploaderId: String!, $count: Int, $offset: Int) {
  mods(filter: {uploaderId: {value: $uploaderId, op: EQUALS}}, count: $count, offset: $offset) {
    totalCount
    nodes { uid, modId, name, version, summary, description, pictureUrl, game { domainName } }
  }
}`

// Catalog is every item the tracked publisher owns, as far as it could be read.
type Catalog struct {
	Total int
	Items []model.Item
	// DroppedPages are the 1-based page numbers that failed and were skipped.
	DroppedPages []int
}

// FetchCatalog pages through the publisher's items. A failure while
// reading the total count is returned; a failed page is logged and its
// items are left out.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	first, err := c.queryMods(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog size: %w", err)
	}
	total := int(first.Get("data.mods.totalCount").Int())
	pages := (total + c.pageSize - 1) / c.pageSize
	c.logger.Info("catalog size", "total", total, "pages", pages)

	cat := &Catalog{Total: total}
	for page := 1; page <= pages; page++ {
		c.logger.Debug("fetching catalog page", "page", page, "of", pages)
		doc, err := c.queryMods(ctx, c.pageSize, (page-1)*c.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("catalog page failed, dropping it", "page", page, "error", err)
			cat.DroppedPages = append(cat.DroppedPages, page)
			continue
		}
		for _, node := range doc.Get("data.mods.nodes").Array() {
			cat.Items = append(cat.Items, itemFromNode(node))
		}
	}
	return cat, nil
}

func (c *Client) queryMods(ctx context.Context, count, offset int) (gjson.Result, error) {
	payload := map[string]any{
		"query": modsQuery,
		"variables": map[string]any{
			"uploaderId": c.uploaderID,
			"count":      count,
			"offset":     offset,
		},
	}
	resp, err := c.http.Do(ctx, http.MethodPost, c.graphqlURL,
		httpclient.WithHeader("apikey", c.apiKey),
		httpclient.WithJSON(payload))
	if err != nil {
		return gjson.Result{}, classify(err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, fmt.Errorf("graphql: invalid JSON response")
	}
	doc := gjson.ParseBytes(resp.Body)
	if errs := doc.Get("errors"); errs.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrGraphQL, errs.Raw)
	}
	return doc, nil
}

// itemFromNode copies a GraphQL mod node. Absent fields stay zero; the
// diff stage skips items without an identity.
func itemFromNode(n gjson.Result) model.Item {
	return model.Item{
		UID:         n.Get("uid").String(),
		ModID:       int(n.Get("modId").Int()),
		Name:        n.Get("name").String(),
		Summary:     n.Get("summary").String(),
		Description: n.Get("description").String(),
		PictureURL:  n.Get("pictureUrl").String(),
		Domain:      n.Get("game.domainName").String(),
	}
}
