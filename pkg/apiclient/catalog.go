package apiclient

import "time"

// CatalogEntry describes a completed upload registered in the catalog.
type CatalogEntry struct {
	ID           string    `json:"id"`
	UploadID     string    `json:"uploadId"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	FileType     string    `json:"fileType"`
	Format       string    `json:"format"`
	SizeBytes    int64     `json:"sizeBytes"`
	Checksum     string    `json:"checksum,omitempty"`
	RecordCount  int64     `json:"recordCount,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// ListCatalog returns all catalog entries, newest first.
func (c *Client) ListCatalog() ([]CatalogEntry, error) {
	return listResources[CatalogEntry](c, "/api/catalog")
}

// GetCatalogEntry returns a catalog entry by id.
func (c *Client) GetCatalogEntry(id string) (*CatalogEntry, error) {
	return getResource[CatalogEntry](c, resourcePath("/api/catalog/%s", id))
}
