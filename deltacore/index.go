package deltacore

import "github.com/cespare/xxhash/v2"

// sourceEntry is one occurrence of a digest somewhere in the source
// stream's chunk sequence.
type sourceEntry struct {
	digest Digest
	offset uint64
	length uint32
}

// SourceIndex maps chunk digests from a Signature to the byte ranges in
// the source stream that produced them, so a Differ can resolve a
// B-chunk's digest to a Copy without rescanning A.
//
// The index buckets entries by an xxhash-64 of the full digest rather
// than a raw digest prefix — a uniformly-distributed, fixed-width key
// that keeps bucket chains short without storing the whole digest twice
// per bucket. Full-digest comparison on lookup guards against the
// (negligible) chance of an xxhash collision between distinct BLAKE3
// digests.
type SourceIndex struct {
	buckets map[uint64][]sourceEntry
}

// BuildSourceIndex constructs a SourceIndex from a source signature.
// Multiple entries may share a digest (duplicate content); all
// occurrences are preserved in source order.
func BuildSourceIndex(sig Signature) *SourceIndex {
	idx := &SourceIndex{buckets: make(map[uint64][]sourceEntry, len(sig.Entries))}

	var offset uint64
	for _, e := range sig.Entries {
		key := bucketKey(e.Digest)
		idx.buckets[key] = append(idx.buckets[key], sourceEntry{
			digest: e.Digest,
			offset: offset,
			length: e.Length,
		})
		offset += uint64(e.Length)
	}

	return idx
}

func bucketKey(d Digest) uint64 {
	return xxhash.Sum64(d[:])
}

// Lookup returns the first source occurrence of digest d, in source
// order, or ok=false if d does not appear in the index. Ties among
// duplicate-content chunks are always resolved to the first listed
// occurrence.
func (idx *SourceIndex) Lookup(d Digest) (offset uint64, length uint32, ok bool) {
	for _, e := range idx.buckets[bucketKey(d)] {
		if e.digest == d {
			return e.offset, e.length, true
		}
	}
	return 0, 0, false
}
