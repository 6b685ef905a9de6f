// Package dag contains the planning core: impact propagation over a
// requirement map, graph construction and level scheduling of the affected
// artifacts into batches that can be applied in parallel.
//
// Everything in this package is synchronous and operates on values supplied
// by the caller. Nothing here touches the file system; requirement discovery
// lives in the requirements package.
package dag
