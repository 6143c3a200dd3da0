// Package reference encodes and decodes the external reference handed to the
// payment processor at checkout and echoed back on every payment.
//
// Layout (version 1), hyphen-delimited and positional:
//
//	{subjectId}-{productId}-{unixMillis}-{nonce}
//
// Fields added later are appended as extra trailing segments; Decode ignores
// segments it does not know, so references already issued keep decoding.
package reference

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gympay/internal/domain"

	"github.com/google/uuid"
)

const (
	Delimiter = "-"

	minSegments = 3
	nonceLength = 8
)

// Reference is a decoded external reference.
type Reference struct {
	SubjectID int64
	ProductID string
	IssuedAt  time.Time
	Nonce     string
	Version   int
}

// String re-encodes r in the version 1 layout.
func (r Reference) String() string {
	parts := []string{
		strconv.FormatInt(r.SubjectID, 10),
		r.ProductID,
		strconv.FormatInt(r.IssuedAt.UnixMilli(), 10),
	}
	if r.Nonce != "" {
		parts = append(parts, r.Nonce)
	}
	return strings.Join(parts, Delimiter)
}

// Encode builds a fresh reference for subjectID buying productID.
func Encode(subjectID int64, productID string) (string, error) {
	return encodeAt(subjectID, productID, time.Now())
}

func encodeAt(subjectID int64, productID string, at time.Time) (string, error) {
	if subjectID < 0 {
		return "", fmt.Errorf("%w: negative subject id %d", domain.ErrMalformedReference, subjectID)
	}
	if productID == "" || strings.Contains(productID, Delimiter) {
		return "", fmt.Errorf("%w: product id %q cannot be encoded", domain.ErrMalformedReference, productID)
	}
	r := Reference{
		SubjectID: subjectID,
		ProductID: productID,
		IssuedAt:  at,
		Nonce:     newNonce(),
	}
	return r.String(), nil
}

// Decode parses raw exactly as the processor echoed it. The first segment must
// be an integer; a bad timestamp segment leaves IssuedAt zero.
func Decode(raw string) (Reference, error) {
	segments := strings.Split(raw, Delimiter)
	if len(segments) < minSegments {
		return Reference{}, fmt.Errorf("%w: %q has %d segments", domain.ErrMalformedReference, raw, len(segments))
	}
	subjectID, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: subject id %q", domain.ErrMalformedReference, segments[0])
	}
	r := Reference{
		SubjectID: subjectID,
		ProductID: segments[1],
		Version:   1,
	}
	if ms, err := strconv.ParseInt(segments[2], 10, 64); err == nil {
		r.IssuedAt = time.UnixMilli(ms)
	}
	if len(segments) > 3 {
		r.Nonce = segments[3]
	}
	return r, nil
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:nonceLength]
}
