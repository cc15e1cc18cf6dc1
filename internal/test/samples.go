package test

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const (
	LargeCompressible = iota
	Uncompressable
	SmallText
)

var words = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	"pack", "my", "box", "with", "five", "dozen", "liquor", "jugs",
}

var (
	cacheLarge = genCompressible(8 << 20)
	cacheRand  = genUncompressable(2 << 20)
)

// Samples for different use cases.  Generated rather than embedded so
// the content size is easy to vary per test.
func LoadSample(t testing.TB, ty int) ([]byte, string) {

	switch ty {
	case LargeCompressible:
		return cacheLarge, Sha2sum(cacheLarge)
	case Uncompressable:
		return cacheRand, Sha2sum(cacheRand)
	case SmallText:
		data := []byte("abcdef")
		return data, Sha2sum(data)
	}

	t.Fatalf("Cannot find sample")
	return nil, ""
}

func genCompressible(sz int) []byte {

	var buf bytes.Buffer
	buf.Grow(sz + 16)

	for i := 0; buf.Len() < sz; i++ {
		buf.WriteString(words[i%len(words)])
		if i%13 == 0 {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}

	return buf.Bytes()[:sz]
}

func genUncompressable(sz int) []byte {

	data := make([]byte, sz)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return data
}

func Sha2sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
