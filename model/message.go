package model

// Message is a single raw message read from an mbox archive.
type Message struct {
	Index int
	Hash  string
	Raw   []byte
}
