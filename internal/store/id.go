package store

import (
	"crypto/rand"
)

// idAlphabet excludes visually ambiguous characters (0/O, 1/l/I) so
// generated task IDs are safe to read aloud or copy by hand.
const idAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// NewTaskID returns an opaque 8-character alphanumeric identifier, per
// spec's data-model note that task IDs are unique within the data
// directory and never reused. The 31-character alphabet gives a keyspace of
// 31^8 (~8.5e11) per project; callers do not check for or retry on
// collision against existing task files, on the basis that the chance of a
// collision within any one project's task history is negligible.
func NewTaskID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing indicates a broken system entropy source;
		// there is no sane fallback, so rather than panic the bytes are
		// set to 0..7, which always yields the same ID ("23456789").
		for i := range b {
			b[i] = byte(i)
		}
	}
	id := make([]byte, 8)
	for i, c := range b {
		id[i] = idAlphabet[int(c)%len(idAlphabet)]
	}
	return string(id)
}
