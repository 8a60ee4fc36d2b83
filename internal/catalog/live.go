package catalog

import "indigo/internal/domain"

// Live pairs a feed with the store whose writes it observes, which is the
// shape a view controller needs.
type Live struct {
	*Feed
	domain.CatalogWriter
}

var _ domain.Catalog = Live{}

func NewLive(feed *Feed, writer domain.CatalogWriter) Live {
	return Live{Feed: feed, CatalogWriter: writer}
}
