package codec

import (
	"fmt"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// AcceptedVersions lists the format versions DecodeHistory understands.
var AcceptedVersions = []uint32{model.VersionLegacy, model.VersionCompressed}

// DecodeHistory parses a complete history blob.
//
// The header is the magic followed by the format version. A legacy body is
// a sequence of exactly three pools. A compressed body is a zstd block
// holding three pools back to back, without a count.
func DecodeHistory(b []byte) (*model.History, error) {
	d := NewDecoder(b)

	magic, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != model.Magic {
		return nil, &MagicError{Expected: model.Magic, Found: magic}
	}

	version, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("read format version: %w", err)
	}

	var pools [model.PoolCount]model.Pool
	switch version {
	case model.VersionLegacy:
		pools, err = decodeLegacyBody(d)
	case model.VersionCompressed:
		pools, err = decodeCompressedBody(d.rest())
	default:
		return nil, &VersionError{Accepted: AcceptedVersions, Found: version}
	}
	if err != nil {
		return nil, err
	}

	return &model.History{
		Magic:   magic,
		Version: version,
		Pools:   pools,
	}, nil
}

func decodeLegacyBody(d *Decoder) ([model.PoolCount]model.Pool, error) {
	var pools [model.PoolCount]model.Pool

	start := d.Offset()
	n, err := d.ReadU32()
	if err != nil {
		return pools, fmt.Errorf("read pool count: %w", err)
	}
	if n != model.PoolCount {
		return pools, &DecodeError{
			Offset: start,
			Reason: fmt.Sprintf("expected %d pools, found %d", model.PoolCount, n),
		}
	}
	if err := decodePools(d, &pools); err != nil {
		return pools, err
	}
	return pools, nil
}

func decodeCompressedBody(body []byte) ([model.PoolCount]model.Pool, error) {
	var pools [model.PoolCount]model.Pool

	raw, err := decompress(body)
	if err != nil {
		return pools, err
	}
	if err := decodePools(NewDecoder(raw), &pools); err != nil {
		return pools, fmt.Errorf("decompressed body: %w", err)
	}
	return pools, nil
}

func decodePools(d *Decoder, pools *[model.PoolCount]model.Pool) error {
	for i := range pools {
		p, err := d.DecodePool()
		if err != nil {
			return fmt.Errorf("pool %d: %w", i, err)
		}
		pools[i] = p
	}
	if d.Remaining() != 0 {
		return &DecodeError{
			Offset: d.Offset(),
			Reason: fmt.Sprintf("%d trailing bytes after last pool", d.Remaining()),
		}
	}
	return nil
}

// EncodeHistory serializes h in the body layout selected by h.Version.
func EncodeHistory(h *model.History) ([]byte, error) {
	if h.Magic != model.Magic {
		return nil, &MagicError{Expected: model.Magic, Found: h.Magic}
	}

	e := NewEncoder()
	e.PutU32(h.Magic)
	e.PutU32(h.Version)

	switch h.Version {
	case model.VersionLegacy:
		e.PutU32(model.PoolCount)
		if err := encodePools(e, h.Pools); err != nil {
			return nil, err
		}
		return e.Bytes(), nil
	case model.VersionCompressed:
		body := NewEncoder()
		if err := encodePools(body, h.Pools); err != nil {
			return nil, err
		}
		compressed, err := compress(body.Bytes())
		if err != nil {
			return nil, err
		}
		return append(e.Bytes(), compressed...), nil
	default:
		return nil, &VersionError{Accepted: AcceptedVersions, Found: h.Version}
	}
}

func encodePools(e *Encoder, pools [model.PoolCount]model.Pool) error {
	for i, p := range pools {
		if err := e.EncodePool(p); err != nil {
			return fmt.Errorf("pool %d: %w", i, err)
		}
	}
	return nil
}
