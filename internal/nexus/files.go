package nexus

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/blackwell-systems/modmirror/internal/model"
)

// ListFiles returns every file uploaded for an item.
func (c *Client) ListFiles(ctx context.Context, domain string, modID int) ([]model.FileRecord, error) {
	doc, err := c.get(ctx, fmt.Sprintf("/v1/games/%s/mods/%d/files.json", domain, modID))
	if err != nil {
		return nil, fmt.Errorf("listing files for %s/%d: %w", domain, modID, err)
	}
	files := doc.Get("files")
	if !files.IsArray() {
		return nil, fmt.Errorf("listing files for %s/%d: response has no files array", domain, modID)
	}

	var out []model.FileRecord
	files.ForEach(func(_, f gjson.Result) bool {
		out = append(out, model.FileRecord{
			FileID:            int(f.Get("file_id").Int()),
			FileName:          f.Get("file_name").String(),
			Version:           f.Get("version").String(),
			CategoryName:      f.Get("category_name").String(),
			UploadedTimestamp: f.Get("uploaded_timestamp").Int(),
		})
		return true
	})
	return out, nil
}

// Changelogs returns the item's changelog entries keyed by version.
func (c *Client) Changelogs(ctx context.Context, domain string, modID int) (map[string][]string, error) {
	doc, err := c.get(ctx, fmt.Sprintf("/v1/games/%s/mods/%d/changelogs.json", domain, modID))
	if err != nil {
		return nil, fmt.Errorf("fetching changelogs for %s/%d: %w", domain, modID, err)
	}

	out := map[string][]string{}
	if !doc.IsObject() {
		return out, nil
	}
	doc.ForEach(func(version, entries gjson.Result) bool {
		for _, e := range entries.Array() {
			out[version.String()] = append(out[version.String()], e.String())
		}
		return true
	})
	return out, nil
}

// DownloadLink resolves a signed download URL for one file. The first
// mirror listed is used.
func (c *Client) DownloadLink(ctx context.Context, domain string, modID, fileID int) (string, error) {
	doc, err := c.get(ctx, fmt.Sprintf("/v1/games/%s/mods/%d/files/%d/download_link.json", domain, modID, fileID))
	if err != nil {
		return "", fmt.Errorf("resolving download link for file %d: %w", fileID, err)
	}
	uri := doc.Get("0.URI").String()
	if uri == "" {
		return "", fmt.Errorf("resolving download link for file %d: no mirrors returned", fileID)
	}
	return uri, nil
}
