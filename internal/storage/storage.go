// Package storage provides the durable key/value capability the engine
// persists its state through.
package storage

// KV is a string-keyed blob store. Get reports presence through its second
// return value; an absent key is not an error.
type KV interface {
	Get(key string) (string, bool, error)

	Set(key, value string) error

	Remove(key string) error
}
