// Package redis provides a JobQueue backed by a Redis list, so conversion
// jobs survive restarts and can be shared by workers in several processes.
//
// Jobs are JSON encoded, pushed with LPUSH and popped with BRPOP.
package redis
