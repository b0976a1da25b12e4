package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/harborml/longshore/pkg/bufpool"
)

// FileChecksum computes the SHA-256 digest of a file by streaming it and
// returns the 64-character lowercase hex encoding. Cancellation is checked
// between blocks so completion can be abandoned mid-hash.
func FileChecksum(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := bufpool.Get(bufpool.DefaultMediumSize)
	defer bufpool.Put(buf)

	h := sha256.New()
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
