package tokens

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/quangnv/accountd/internal/common"
	"github.com/quangnv/accountd/model"
	"github.com/quangnv/accountd/params"
)

// Token purposes. A token minted for one purpose never verifies for another.
const (
	PurposeActivate = "activate"
	PurposeReset    = "reset"
)

// neverLoggedIn is the last-login sentinel for accounts with no login yet.
const neverLoggedIn = "never"

var ErrInvalidUID = errors.New("invalid user reference")

// Issuer mints and verifies stateless account tokens. A token is
// "<base36 time bucket>-<hmac-sha256 hex>" where the MAC covers the purpose,
// the account's id, active flag and last-login timestamp, and the bucket
// itself. Changing any of those inputs invalidates outstanding tokens, so an
// activation token dies on activation and a reset token dies on login.
type Issuer struct {
	secret        string
	bucketSize    time.Duration
	maxAgeBuckets int
	now           func() time.Time
}

func NewIssuer(secret string, bucketSize time.Duration, maxAgeBuckets int) *Issuer {
	if bucketSize <= 0 {
		bucketSize = params.TokenBucketSize
	}
	if maxAgeBuckets < 0 {
		maxAgeBuckets = params.TokenMaxAgeBuckets
	}
	return &Issuer{
		secret:        secret,
		bucketSize:    bucketSize,
		maxAgeBuckets: maxAgeBuckets,
		now:           time.Now,
	}
}

func (i *Issuer) currentBucket() int64 {
	return i.now().Unix() / int64(i.bucketSize.Seconds())
}

func lastLoginStamp(user *model.User) string {
	if user.LastLogin == nil {
		return neverLoggedIn
	}
	return strconv.FormatInt(user.LastLogin.Unix(), 10)
}

func (i *Issuer) signature(user *model.User, purpose string, bucket int64) string {
	return common.CalculateHash(i.secret, purpose, user.ID, user.Active, lastLoginStamp(user), bucket)
}

// Generate returns a token for the user's current state. Deterministic within
// a time bucket: the same state yields the same token until the bucket rolls.
func (i *Issuer) Generate(user *model.User, purpose string) string {
	bucket := i.currentBucket()
	return strconv.FormatInt(bucket, 36) + "-" + i.signature(user, purpose, bucket)
}

// Verify reports whether token proves ownership of the user's mailbox for the
// given purpose. It accepts tokens minted in the current bucket or up to
// maxAgeBuckets before it, and fails closed on any malformed input.
func (i *Issuer) Verify(user *model.User, purpose string, token string) bool {
	bucketStr, sig, ok := strings.Cut(token, "-")
	if !ok || bucketStr == "" || sig == "" {
		return false
	}
	bucket, err := strconv.ParseInt(bucketStr, 36, 64)
	if err != nil || bucket < 0 {
		return false
	}
	age := i.currentBucket() - bucket
	if age < 0 || age > int64(i.maxAgeBuckets) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(i.signature(user, purpose, bucket)))
}

// EncodeUID renders a numeric account id as the opaque path segment used in
// emailed links.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(s string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return uint(id), nil
}
