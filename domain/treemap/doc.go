// Package treemap implements an ordered map backed by a red-black tree
// whose nodes live in a segmented slot arena instead of the Go heap.
// Node links are uint32 slot handles, so erase/insert churn recycles
// slots in place and never touches the allocator on the hot path.
//
// The container is single-threaded by contract. Callers that need
// concurrent access must serialize through a single writer, the way
// the service layer does.
package treemap
