package item

import (
	"strconv"
	"time"

	"github.com/shelfsense/shelfsense/internal/domain"
)

// Stored hash field names. The numeric and tag fields double as FT index
// attributes and as query.Field values.
const (
	fieldItemID          = "item_id"
	fieldItemName        = "item_name"
	fieldSKU             = "sku"
	fieldBarcode         = "barcode"
	fieldBrand           = "brand"
	fieldCategory        = "category"
	fieldMSRP            = "msrp"
	fieldStorePrice      = "store_price"
	fieldEcomPrice       = "ecom_price"
	fieldCostPrice       = "cost_price"
	fieldDiscountPercent = "discount_percent"
	fieldPromotion       = "promotion"
	fieldPromoStart      = "promo_start"
	fieldPromoEnd        = "promo_end"
	fieldQuantityInStock = "quantity_in_stock"
	fieldOnlineAvailable = "online_available"
	fieldStoreAvailable  = "store_available"
	fieldCreatedAt       = "created_at"
	fieldLastUpdated     = "last_updated"
	fieldLastPurchasedAt = "last_purchased_at"
	fieldAverageRating   = "average_rating"
	fieldNumberOfReviews = "number_of_reviews"
	fieldUnitsSold       = "units_sold"
)

func itemToFields(it *domain.Item) map[string]string {
	return map[string]string{
		fieldItemID:          it.ItemID,
		fieldItemName:        it.ItemName,
		fieldSKU:             it.SKU,
		fieldBarcode:         it.Barcode,
		fieldBrand:           it.Brand,
		fieldCategory:        it.Category,
		fieldMSRP:            formatFloat(it.MSRP),
		fieldStorePrice:      formatFloat(it.StorePrice),
		fieldEcomPrice:       formatFloat(it.EcomPrice),
		fieldCostPrice:       formatFloat(it.CostPrice),
		fieldDiscountPercent: formatFloat(it.DiscountPercent),
		fieldPromotion:       it.Promotion,
		fieldPromoStart:      formatMillis(it.PromoStart),
		fieldPromoEnd:        formatMillis(it.PromoEnd),
		fieldQuantityInStock: strconv.Itoa(it.QuantityInStock),
		fieldOnlineAvailable: strconv.FormatBool(it.OnlineAvailable),
		fieldStoreAvailable:  strconv.FormatBool(it.StoreAvailable),
		fieldCreatedAt:       formatMillis(it.CreatedAt),
		fieldLastUpdated:     formatMillis(it.LastUpdated),
		fieldLastPurchasedAt: formatMillis(it.LastPurchasedAt),
		fieldAverageRating:   formatFloat(it.AverageRating),
		fieldNumberOfReviews: strconv.Itoa(it.NumberOfReviews),
		fieldUnitsSold:       strconv.Itoa(it.UnitsSold),
	}
}

// itemFromFields reconstructs an item from stored hash fields. Unparsable
// values degrade to zero values rather than failing the whole scan.
func itemFromFields(f map[string]string) domain.Item {
	return domain.Item{
		ItemID:          f[fieldItemID],
		ItemName:        f[fieldItemName],
		SKU:             f[fieldSKU],
		Barcode:         f[fieldBarcode],
		Brand:           f[fieldBrand],
		Category:        f[fieldCategory],
		MSRP:            parseFloat(f[fieldMSRP]),
		StorePrice:      parseFloat(f[fieldStorePrice]),
		EcomPrice:       parseFloat(f[fieldEcomPrice]),
		CostPrice:       parseFloat(f[fieldCostPrice]),
		DiscountPercent: parseFloat(f[fieldDiscountPercent]),
		Promotion:       f[fieldPromotion],
		PromoStart:      parseMillis(f[fieldPromoStart]),
		PromoEnd:        parseMillis(f[fieldPromoEnd]),
		QuantityInStock: parseInt(f[fieldQuantityInStock]),
		OnlineAvailable: f[fieldOnlineAvailable] == "true",
		StoreAvailable:  f[fieldStoreAvailable] == "true",
		CreatedAt:       parseMillis(f[fieldCreatedAt]),
		LastUpdated:     parseMillis(f[fieldLastUpdated]),
		LastPurchasedAt: parseMillis(f[fieldLastPurchasedAt]),
		AverageRating:   parseFloat(f[fieldAverageRating]),
		NumberOfReviews: parseInt(f[fieldNumberOfReviews]),
		UnitsSold:       parseInt(f[fieldUnitsSold]),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMillis renders a timestamp as unix milliseconds; the zero time is
// stored as "0" and read back as unset.
func formatMillis(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
