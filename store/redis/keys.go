package redis

import "fmt"

func recordKey(keyPrefix string, physicalID string) string {
	return fmt.Sprintf("%vrecord:%v", keyPrefix, physicalID)
}

// recordsByUpdate returns the key for the ZSET that contains all physical ids sorted by the time
// their record was last updated.
func recordsByUpdate(keyPrefix string) string {
	return keyPrefix + "records-by-update"
}
