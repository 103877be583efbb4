package domain

import "time"

// PartyType classifies which directions a client ships.
type PartyType string

const (
	PartyImporter PartyType = "importer"
	PartyExporter PartyType = "exporter"
	PartyBoth     PartyType = "both"
)

// Client is a shipper/importer party. Its lifecycle is independent from
// transactions; transactions reference clients but do not own them.
type Client struct {
	ID            int
	Name          string
	Type          PartyType
	Country       string
	ContactPerson string
	ContactEmail  string
	ContactPhone  string
	Active        bool
	CreatedAt     time.Time
}
