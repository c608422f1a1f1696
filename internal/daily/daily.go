// internal/daily/daily.go
//
// Daily round helpers.
// Every player who starts the daily round of a game on the same UTC date gets the
// same shuffle, so results are comparable. The seed is derived with HKDF-SHA256 from
// the server salt, keyed on the date and the game slug.

package daily

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"time"

	"golang.org/x/crypto/hkdf"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the deterministic shuffle seed for game on the date of t.
func Seed(salt, game string, t time.Time) (int64, error) {
	r := hkdf.New(sha256.New, []byte(salt), []byte(DateKey(t)), []byte("minigames/daily/"+game))
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("derive daily seed: %w", err)
	}
	// keep it non-negative; rand.NewSource folds negative seeds anyway
	return int64(binary.BigEndian.Uint64(buf[:]) >> 1), nil
}

// Rand returns a shuffle source seeded for the daily round of game.
func Rand(salt, game string, t time.Time) (*rand.Rand, error) {
	seed, err := Seed(salt, game, t)
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}
