package enums

// CatalogStatus tracks the lifecycle of the shared catalog.
type CatalogStatus string

const (
	CatalogStatusIdle    CatalogStatus = "idle"
	CatalogStatusLoading CatalogStatus = "loading"
	CatalogStatusReady   CatalogStatus = "ready"
	CatalogStatusFailed  CatalogStatus = "failed"
)

// String implements fmt.Stringer.
func (s CatalogStatus) String() string {
	return string(s)
}
