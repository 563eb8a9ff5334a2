// Package hostsim implements a development stand-in for the NotchBar host
// process. It speaks the same WebSocket channel protocol as the real host:
// clients connect, send request frames and receive replies, and the simulator
// pushes authorization and dismissal events.
//
// Beyond the channel endpoint the simulator exposes a small debug REST
// surface for poking host-side state from tests and scripts (dumping stored
// entities, flipping a bundle's authorization, dismissing an entity as the
// user would) plus a Prometheus scrape endpoint.
//
// The simulator enforces the host-side rules the SDK cannot: per-bundle
// capacity limits per entity kind, authorization checks on present, embedded
// HTML sanitization and inline media verification, and tombstones for
// dismissed ids so a late update is answered with unknown_entity instead of
// silently resurrecting the entity.
package hostsim
