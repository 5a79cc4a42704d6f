// Package redis provides connection bootstrap and health checking for the
// Redis instance backing the trial notification marker store.
package redis
