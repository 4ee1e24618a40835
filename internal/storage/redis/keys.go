package redis

import (
	"fmt"

	"github.com/mcoot/reflextile/internal/model"
)

// Key prefix for all score data
const keyPrefix = "rtscore"

// recordKey returns the Redis key for a PlayerRecord
func recordKey(deviceID string, mode model.Mode) string {
	return fmt.Sprintf("%s:record:%s:%s", keyPrefix, mode, deviceID)
}

// recordsIndexKey returns the Redis key for the SET of all record keys
func recordsIndexKey() string {
	return fmt.Sprintf("%s:idx:records", keyPrefix)
}

// nameIndexKey returns the Redis key for the name -> device index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// contactIndexKey returns the Redis key for the contact -> device index
func contactIndexKey(contact string) string {
	return fmt.Sprintf("%s:idx:contact:%s", keyPrefix, contact)
}

// tapsKey returns the Redis key for the HASH of device -> taps for a brand
func tapsKey(brand string) string {
	return fmt.Sprintf("%s:taps:%s", keyPrefix, brand)
}

// brandsIndexKey returns the Redis key for the SET of brands with taps
func brandsIndexKey() string {
	return fmt.Sprintf("%s:idx:brands", keyPrefix)
}
