package query

// Named query type keys. The catalog is fixed at compile time.
const (
	TypeTopPerforming     = "topPerformingItems"
	TypeUnderperforming   = "underperformingItems"
	TypeLowStockHighSales = "lowStockHighSales"
	TypeOnlineOnly        = "onlineOnly"
	TypeStoreOnly         = "storeOnly"
	TypeOnlineAndStore    = "onlineAndStore"
)

// Metadata describes one supported named query.
type Metadata struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// SupportedQueries returns the fixed named-query catalog.
func SupportedQueries() []Metadata {
	return []Metadata{
		{TypeTopPerforming, "Top Performing Items", "Items with high sales and ratings"},
		{TypeUnderperforming, "Underperforming Items", "Items with low sales and low ratings"},
		{TypeLowStockHighSales, "Low Stock High Sales", "Items that are low in stock but selling well"},
		{TypeOnlineOnly, "Online Only Items", "Items only available online"},
		{TypeStoreOnly, "Store Only Items", "Items only available in store"},
		{TypeOnlineAndStore, "Online and Store Items", "Items available both online and in store"},
	}
}
