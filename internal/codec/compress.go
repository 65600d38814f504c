package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// MaxDecompressedSize bounds the decompressed body of a compressed history.
const MaxDecompressedSize = 10 << 20

func decompress(body []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(body),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecompressedSize))
	if err != nil {
		return nil, &DecompressError{Err: err}
	}
	defer dec.Close()

	out, err := io.ReadAll(io.LimitReader(dec, MaxDecompressedSize+1))
	if err != nil {
		return nil, &DecompressError{Err: err}
	}
	if len(out) > MaxDecompressedSize {
		return nil, &DecompressError{
			Err: fmt.Errorf("decompressed body exceeds %d bytes", MaxDecompressedSize),
		}
	}
	return out, nil
}

func compress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, &EncodeError{Reason: fmt.Sprintf("create zstd encoder: %v", err)}
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}
