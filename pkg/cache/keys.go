package cache

import "fmt"

// AvailabilityKey names the cached availability snapshot for one room
// type of one property. Every inventory write must delete this key.
func AvailabilityKey(propertyID, roomType string) string {
	return fmt.Sprintf("availability:%s:%s", propertyID, roomType)
}
