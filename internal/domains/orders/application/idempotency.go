package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type normalizedPlaceOrder struct {
	CustomerID string           `json:"customerId"`
	Lines      []normalizedLine `json:"lines"`
}

type normalizedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// fingerprintPlaceOrder hashes the collapsed request. Line order does not matter.
func fingerprintPlaceOrder(customerID string, lines []requestedLine) (string, error) {
	normalized := normalizedPlaceOrder{
		CustomerID: customerID,
		Lines:      make([]normalizedLine, 0, len(lines)),
	}
	for _, l := range lines {
		normalized.Lines = append(normalized.Lines, normalizedLine{ProductID: l.productID, Quantity: l.quantity})
	}
	sort.Slice(normalized.Lines, func(i, j int) bool {
		return normalized.Lines[i].ProductID < normalized.Lines[j].ProductID
	})
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
