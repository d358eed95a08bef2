// Package bootstrap runs the resource checks that gate node startup.
//
// A node that is reachable only from its own host (every bound address and
// the publish address are loopback or link-local) is treated as a
// development node: failed checks are logged as warnings and startup
// continues. Any other node is treated as a production node and a failed
// check aborts startup with an error listing every violation.
//
// Typical use from the startup path:
//
//	err := bootstrap.Validate(settings, bound, probe.NewSystem(initialHeap),
//	    bootstrap.WithLogger(logger),
//	    bootstrap.WithNodeName(name),
//	)
//	if err != nil {
//	    // do not start serving
//	}
package bootstrap
