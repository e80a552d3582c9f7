package redis

const (
	// ChannelReload is the pub/sub channel carrying reload broadcasts
	ChannelReload = "megamenu:reload"
	// KeyPrefixRefresh is the prefix for per-instance refresh status keys
	KeyPrefixRefresh = "megamenu:refresh:"
	// KeyRefreshInstances is the key for the set of instances that reported a refresh
	KeyRefreshInstances = "megamenu:refresh:instances"
)

// RefreshKey returns the Redis key for an instance's last refresh status
func RefreshKey(instance string) string {
	return KeyPrefixRefresh + instance
}
