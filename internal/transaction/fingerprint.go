package transaction

import (
	"hash/fnv"
	"strconv"
	"time"
)

// Fingerprint derives the identity hash used as the merge key for imports.
// It is a pure function of the fields a bank row cannot change between
// exports, so re-importing the same row upserts instead of duplicating.
// FNV-1a is deliberate: the fingerprint is a merge hint, not a security
// boundary, and collisions only cost a manual duplicate review.
//
// The date enters the hash at second precision. Imported rows all carry
// midnight, so re-imports still merge; nudging the time of day is the
// escape hatch for keeping an intentional same-day duplicate.
func Fingerprint(date time.Time, source string, amount int64, account string) string {
	h := fnv.New64a()
	h.Write([]byte(date.Format(time.DateTime)))
	h.Write([]byte{0})
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(amount, 10)))
	h.Write([]byte{0})
	h.Write([]byte(account))

	return strconv.FormatUint(h.Sum64(), 16)
}
