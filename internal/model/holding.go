package model

import (
	"fmt"
	"time"
)

// AssetClass categorizes a holding for allocation and news queries.
type AssetClass string

const (
	AssetDomesticEquity AssetClass = "domestic-equity"
	AssetForeignEquity  AssetClass = "foreign-equity"
	AssetETF            AssetClass = "etf"
	AssetCrypto         AssetClass = "crypto"
	AssetBond           AssetClass = "bond"
	AssetCommodity      AssetClass = "commodity"
	AssetOther          AssetClass = "other"
)

// AssetClasses lists every class in display order.
var AssetClasses = []AssetClass{
	AssetDomesticEquity,
	AssetForeignEquity,
	AssetETF,
	AssetCrypto,
	AssetBond,
	AssetCommodity,
	AssetOther,
}

// ParseAssetClass validates a class name.
func ParseAssetClass(s string) (AssetClass, error) {
	for _, c := range AssetClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// AssetClassOrDefault reads a stored class, falling back to foreign-equity
// for empty or unrecognized values.
func AssetClassOrDefault(s string) AssetClass {
	c, err := ParseAssetClass(s)
	if err != nil {
		return AssetForeignEquity
	}
	return c
}

// Holding is a user-declared position as stored in the document database.
// Ticker is stored upper-case and normalized. Each add creates a new record;
// lots are never merged.
type Holding struct {
	RecordID    string     `json:"recordId"`
	Ticker      string     `json:"ticker"`
	DisplayName string     `json:"displayName"`
	Quantity    float64    `json:"quantity"`
	AverageCost float64    `json:"averageCost"`
	AssetClass  AssetClass `json:"assetClass"`
	Note        string     `json:"note"`
	AddedAt     time.Time  `json:"addedAt"`
}
