// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the snapshot payload codec. The value is
// stored in the snapshot header.
type Compression uint8

const (
	CompressionNone Compression = 1
	CompressionLZ4  Compression = 2
	CompressionZstd Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression maps a config name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// errIncompressible means compression would not shrink the payload;
// the snapshot falls back to CompressionNone.
var errIncompressible = errors.New("cache: data is incompressible")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, codec Compression) ([]byte, error) {
	switch codec {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", codec)
	}
}

func decompress(data []byte, codec Compression, size int) ([]byte, error) {
	switch codec {
	case CompressionNone:
		if len(data) != size {
			return nil, fmt.Errorf("stored payload is %d bytes, header says %d", len(data), size)
		}
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil
	case CompressionZstd:
		decompressed, err := zstdDecoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(decompressed) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(decompressed), size)
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", codec)
	}
}
