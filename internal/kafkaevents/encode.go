package kafkaevents

import (
	"encoding/json"
	"strconv"

	"nrgchamp/hotelac/internal/billing"
)

func mustMarshal(rec billing.DetailRecord) []byte {
	b, err := json.Marshal(rec)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
