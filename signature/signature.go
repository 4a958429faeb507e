// Package signature computes and serializes the chunk signature of a
// byte stream: the ordered (digest, length) pairs that summarize its
// content-defined chunk structure without the chunk bytes themselves.
package signature

import (
	"io"

	"github.com/zeebo/blake3"

	"github.com/avalonkit/fcdelta/deltacore"
	"github.com/avalonkit/fcdelta/fastcdc"
	"github.com/avalonkit/fcdelta/wire"
)

// Sign computes the signature of r under the given chunking parameters.
// The digest for each chunk is computed as the chunk's bytes come off
// the chunker, so the stream is only ever read once.
func Sign(r io.Reader, params fastcdc.Params) (deltacore.Signature, error) {
	c := fastcdc.NewChunker(r, params)

	var entries []deltacore.SignatureEntry
	for {
		b, data, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return deltacore.Signature{}, deltacore.NewError(deltacore.IO, "signature.Sign", err)
		}

		entries = append(entries, deltacore.SignatureEntry{
			Digest: DigestChunk(data),
			Length: b.Length,
		})
	}

	return deltacore.Signature{
		Params:  deltacore.ChunkParamsFromFastCDC(params),
		Entries: entries,
	}, nil
}

// SignToFile computes the signature of source and writes it to dest in
// the signature file wire format.
func SignToFile(source io.Reader, dest io.Writer, params fastcdc.Params) error {
	sig, err := Sign(source, params)
	if err != nil {
		return err
	}
	if err := wire.WriteSignature(dest, sig); err != nil {
		return err
	}
	return nil
}

// DigestChunk computes the BLAKE3-256 digest of a chunk's bytes. It is
// exported so the Differ can compute B's chunk digests with the exact
// same hashing path used to build a signature.
func DigestChunk(data []byte) deltacore.Digest {
	h := blake3.New()
	h.Write(data)

	var d deltacore.Digest
	sum := h.Sum(nil)
	copy(d[:], sum)
	return d
}

