// Package node runs a nodeguard node: it claims the data directory, binds
// its listeners, passes the bootstrap gate, and only then starts serving.
package node
