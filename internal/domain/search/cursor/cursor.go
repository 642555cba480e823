// Package cursor implements keyset pagination tokens over an ordered record set.
package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/order"
)

const (
	version      = 1
	signatureLen = 16
)

var (
	// ErrMalformed indicates a token that cannot be decoded.
	ErrMalformed = errors.New("cursor: malformed token")
	// ErrBadSignature indicates a token whose signature does not verify.
	ErrBadSignature = errors.New("cursor: bad signature")
	// ErrQueryMismatch indicates a token issued for a structurally different query.
	ErrQueryMismatch = errors.New("cursor: query mismatch")
)

// payload is the wire form. Short keys keep tokens small in Link headers.
type payload struct {
	V int    `json:"v"`
	F string `json:"f"`
	N string `json:"n"`
	A *int64 `json:"a,omitempty"`
}

// Codec encodes and decodes cursors. A non-empty secret signs tokens with HMAC-SHA256.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec. secret may be empty (unsigned tokens).
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode produces a URL-safe token for the position after key, bound to fingerprint.
func (c *Codec) Encode(fingerprint uint64, key order.Key) string {
	p := payload{V: version, F: strconv.FormatUint(fingerprint, 16), N: key.Name}
	if key.HasAt {
		at := key.At
		p.A = &at
	}
	data, _ := json.Marshal(p) //nolint:errchkjson // plain struct of strings and ints
	token := base64.RawURLEncoding.EncodeToString(data)
	if len(c.secret) > 0 {
		token += "." + base64.RawURLEncoding.EncodeToString(c.sign(data))
	}
	return token
}

// Decode parses token and checks it against fingerprint.
func (c *Codec) Decode(token string, fingerprint uint64) (order.Key, error) {
	body, sig, signed := strings.Cut(token, ".")
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return order.Key{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(c.secret) > 0 {
		if !signed {
			return order.Key{}, ErrBadSignature
		}
		got, err := base64.RawURLEncoding.DecodeString(sig)
		if err != nil || !hmac.Equal(got, c.sign(data)) {
			return order.Key{}, ErrBadSignature
		}
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return order.Key{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if p.V != version || p.N == "" {
		return order.Key{}, ErrMalformed
	}
	if p.F != strconv.FormatUint(fingerprint, 16) {
		return order.Key{}, ErrQueryMismatch
	}

	key := order.Key{Name: p.N}
	if p.A != nil {
		key.At, key.HasAt = *p.A, true
	}
	return key, nil
}

func (c *Codec) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write(data)
	return mac.Sum(nil)[:signatureLen]
}

// Slice returns at most limit records strictly after the position `after` (nil = start).
// records must already be ordered by spec. The resume point is found by comparison, not
// by identity, so a position whose record has since disappeared resumes at the next one.
// more reports whether records remain beyond the page; last is the key of the final
// record on the page.
func Slice(
	records []feature.Record, spec order.Spec, after *order.Key, limit int,
) (page []feature.Record, last order.Key, more bool) {
	start := 0
	if after != nil {
		start = sort.Search(len(records), func(i int) bool {
			return spec.Compare(spec.KeyOf(&records[i]), *after) > 0
		})
	}
	end := min(start+max(limit, 0), len(records))
	page = records[start:end]
	if len(page) > 0 {
		last = spec.KeyOf(&page[len(page)-1])
	}
	return page, last, end < len(records)
}
