/*
Package redis backs lattice with Redis: exploration definitions, server-held
sessions with TTL, distributed session locks and an analytics event stream.

Every type accepts an existing go-redis client so one connection pool can
serve them all.
*/
package redis
