package fingerprint

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Calculator computes employee fingerprints.
type Calculator interface {
	// Compute returns the hex-encoded 128-bit fingerprint of an employee identity.
	Compute(firstName, lastName string, professionID, ethnicityID, genderID int64) string
}

const (
	AlgorithmMD5     = "md5"
	AlgorithmMurmur3 = "murmur3"
)

// ForName returns the calculator registered under name.
// The empty string selects MD5.
func ForName(name string) (Calculator, error) {
	switch strings.ToLower(name) {
	case "", AlgorithmMD5:
		return New(), nil
	case AlgorithmMurmur3:
		return NewMurmur3(), nil
	default:
		return nil, fmt.Errorf("unknown fingerprint algorithm %q (expected %s or %s)", name, AlgorithmMD5, AlgorithmMurmur3)
	}
}

// MD5 implements Calculator with an MD5 digest.
// MD5 is a zero-size type; pass it by value.
type MD5 struct{}

// New creates the default MD5 calculator.
func New() MD5 {
	return MD5{}
}

// Compute hashes the identity fields with MD5.
func (MD5) Compute(firstName, lastName string, professionID, ethnicityID, genderID int64) string {
	sum := md5.Sum(identity(firstName, lastName, professionID, ethnicityID, genderID))
	return hex.EncodeToString(sum[:])
}

// Murmur3 implements Calculator with the x64 128-bit Murmur3 hash.
type Murmur3 struct{}

// NewMurmur3 creates a Murmur3 calculator.
func NewMurmur3() Murmur3 {
	return Murmur3{}
}

// Compute hashes the identity fields with Murmur3 and hex-encodes both
// halves big-endian.
func (Murmur3) Compute(firstName, lastName string, professionID, ethnicityID, genderID int64) string {
	h1, h2 := murmur3.Sum128(identity(firstName, lastName, professionID, ethnicityID, genderID))
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], h1)
	binary.BigEndian.PutUint64(buf[8:], h2)
	return hex.EncodeToString(buf[:])
}

// identity builds the hashed input. Uses a single pre-sized buffer since it
// runs once per source row.
func identity(firstName, lastName string, professionID, ethnicityID, genderID int64) []byte {
	buf := make([]byte, 0, len(firstName)+len(lastName)+3*20)
	buf = append(buf, firstName...)
	buf = append(buf, lastName...)
	buf = strconv.AppendInt(buf, professionID, 10)
	buf = strconv.AppendInt(buf, ethnicityID, 10)
	buf = strconv.AppendInt(buf, genderID, 10)
	return buf
}

var (
	_ Calculator = MD5{}
	_ Calculator = Murmur3{}
)
