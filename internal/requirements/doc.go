// Package requirements discovers the direct dependencies of each artifact.
// Providers are registered by name, bound to artifacts through a Router built
// from the routing tables, and queried concurrently by Collect to produce the
// requirement map consumed by the dag package.
package requirements
