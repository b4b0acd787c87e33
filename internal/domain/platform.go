package domain

// Platform identifies the e-commerce platform a record was synced from.
type Platform string

const (
	PlatformEtsy   Platform = "etsy"
	PlatformSquare Platform = "square"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformEtsy || p == PlatformSquare
}
