// Package wire defines the tagged values that cross the bridge boundary.
//
// A Value carries one of seven tags. The ordinals of the first six are part
// of the boundary contract shared with existing guests and are fixed:
//
//	TagFalse=0  TagTrue=1  TagInteger=2  TagFloat=3  TagObject=4  TagString=5
//
// TagNull=6 lets nil survive a round trip instead of collapsing into false.
// It is an extension: a peer limited to the six fixed tags writes nil as
// TagFalse, and that value decodes here as false, not nil. Code talking to
// such a peer must treat false and nil as the same answer.
//
// Hosts that share linear memory with the guest exchange values as 16-byte
// slots; see Load and Store.
package wire
