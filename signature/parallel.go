package signature

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/avalonkit/fcdelta/deltacore"
	"github.com/avalonkit/fcdelta/fastcdc"
)

// chunkUnit pairs a chunk's boundary with its raw bytes, queued for
// hashing by a worker in SignParallel.
type chunkUnit struct {
	boundary fastcdc.Boundary
	data     []byte
}

// SignParallel computes the same signature as Sign, but hashes chunk
// bodies on a bounded pool of workers while a single, strictly ordered
// scan still determines chunk boundaries. Output order matches Sign's:
// boundary discovery is never parallelized, only the hashing of bytes
// already cut from the stream.
func SignParallel(r io.Reader, params fastcdc.Params, workers int) (deltacore.Signature, error) {
	if workers < 1 {
		workers = 1
	}

	c := fastcdc.NewChunker(r, params)

	units := make(chan chunkUnit, workers)
	results := make([]deltacore.SignatureEntry, 0, 64)
	resultsCh := make(chan struct {
		index int
		entry deltacore.SignatureEntry
	}, workers)

	g := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for u := range units {
				resultsCh <- struct {
					index int
					entry deltacore.SignatureEntry
				}{index: int(u.boundary.Offset), entry: deltacore.SignatureEntry{
					Digest: DigestChunk(u.data),
					Length: u.boundary.Length,
				}}
			}
			return nil
		})
	}

	done := make(chan struct{})
	entriesByOffset := make(map[int64]deltacore.SignatureEntry)
	go func() {
		for r := range resultsCh {
			entriesByOffset[int64(r.index)] = r.entry
		}
		close(done)
	}()

	var offsets []int64
	var readErr error
	for {
		b, data, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = deltacore.NewError(deltacore.IO, "signature.SignParallel", err)
			break
		}
		offsets = append(offsets, b.Offset)
		units <- chunkUnit{boundary: b, data: data}
	}
	close(units)

	if err := g.Wait(); err != nil {
		close(resultsCh)
		<-done
		return deltacore.Signature{}, err
	}
	close(resultsCh)
	<-done

	if readErr != nil {
		return deltacore.Signature{}, readErr
	}

	for _, off := range offsets {
		results = append(results, entriesByOffset[off])
	}

	return deltacore.Signature{
		Params:  deltacore.ChunkParamsFromFastCDC(params),
		Entries: results,
	}, nil
}
