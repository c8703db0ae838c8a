package core

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"go.mongodb.org/mongo-driver/bson"
)

// Fingerprint hashes the BSON encoding of a stage sequence with BLAKE2b-64.
// Identical pipelines, key order included, produce identical fingerprints.
func Fingerprint(stages []bson.D) (string, error) {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for i, stage := range stages {
		data, err := bson.Marshal(stage)
		if err != nil {
			return "", fmt.Errorf("stage %d: %w", i, err)
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
