package redis

// DefaultKeyPrefix namespaces every state document.
const DefaultKeyPrefix = "yodda:"

// DocumentKey returns the Redis key holding the state document of a store.
// Example: DocumentKey("yodda:", "link-storage") -> "yodda:link-storage"
func DocumentKey(prefix, key string) string {
	return prefix + key
}
