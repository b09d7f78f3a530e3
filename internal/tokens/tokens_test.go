package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/quangnv/accountd/model"
	"github.com/quangnv/accountd/params"
)

func testIssuer(maxAgeBuckets int) *Issuer {
	return NewIssuer("test-secret", 24*time.Hour, maxAgeBuckets)
}

func testUser(active bool, lastLogin *time.Time) *model.User {
	return &model.User{
		ID:        42,
		Username:  "alice",
		Email:     "alice@example.com",
		Active:    active,
		LastLogin: lastLogin,
	}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	issuer := testIssuer(1)
	lastLogin := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		user *model.User
	}{
		{"inactive never logged in", testUser(false, nil)},
		{"active never logged in", testUser(true, nil)},
		{"active with last login", testUser(true, &lastLogin)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, purpose := range []string{PurposeActivate, PurposeReset} {
				token := issuer.Generate(tc.user, purpose)
				if !issuer.Verify(tc.user, purpose, token) {
					t.Errorf("token for purpose %q did not verify", purpose)
				}
			}
		})
	}
}

func TestVerifyRejectsPurposeMismatch(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(false, nil)

	token := issuer.Generate(user, PurposeActivate)
	if issuer.Verify(user, PurposeReset, token) {
		t.Fatal("activation token verified as reset token")
	}
}

func TestVerifyRejectsAfterActivation(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(false, nil)

	token := issuer.Generate(user, PurposeActivate)
	user.Active = true
	if issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token survived the active flag flipping")
	}
}

func TestVerifyRejectsAfterLogin(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(true, nil)

	token := issuer.Generate(user, PurposeReset)
	now := time.Now()
	user.LastLogin = &now
	if issuer.Verify(user, PurposeReset, token) {
		t.Fatal("reset token survived a login")
	}
}

func TestVerifyBucketExpiry(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(false, nil)

	base := time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }
	token := issuer.Generate(user, PurposeActivate)

	// same bucket
	if !issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token did not verify in its own bucket")
	}

	// one bucket later, still within maxAgeBuckets
	issuer.now = func() time.Time { return base.Add(24 * time.Hour) }
	if !issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token did not verify one bucket later")
	}

	// two buckets later, expired
	issuer.now = func() time.Time { return base.Add(48 * time.Hour) }
	if issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token verified two buckets later")
	}
}

func TestVerifyRejectsFutureBucket(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(false, nil)

	base := time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }
	token := issuer.Generate(user, PurposeActivate)

	issuer.now = func() time.Time { return base.Add(-24 * time.Hour) }
	if issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token from a future bucket verified")
	}
}

func TestVerifyMalformedTokens(t *testing.T) {
	issuer := testIssuer(1)
	user := testUser(false, nil)
	valid := issuer.Generate(user, PurposeActivate)

	malformed := []string{
		"",
		"-",
		"nodash",
		"abc-",
		"-abc",
		"!!-deadbeef",
		valid + "x",
		strings.ToUpper(valid),
	}
	for _, token := range malformed {
		if issuer.Verify(user, PurposeActivate, token) {
			t.Errorf("malformed token %q verified", token)
		}
	}
}

func TestNewIssuerDefaultsBucketSize(t *testing.T) {
	issuer := NewIssuer("test-secret", 0, -1)
	if issuer.bucketSize != params.TokenBucketSize {
		t.Fatalf("bucketSize = %v, want %v", issuer.bucketSize, params.TokenBucketSize)
	}
	if issuer.maxAgeBuckets != params.TokenMaxAgeBuckets {
		t.Fatalf("maxAgeBuckets = %d, want %d", issuer.maxAgeBuckets, params.TokenMaxAgeBuckets)
	}

	user := testUser(false, nil)
	token := issuer.Generate(user, PurposeActivate)
	if !issuer.Verify(user, PurposeActivate, token) {
		t.Fatal("token did not verify under defaulted parameters")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	user := testUser(false, nil)
	token := testIssuer(1).Generate(user, PurposeActivate)

	other := NewIssuer("other-secret", 24*time.Hour, 1)
	if other.Verify(user, PurposeActivate, token) {
		t.Fatal("token verified under a different secret")
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	for _, id := range []uint{1, 42, 123456789} {
		uid := EncodeUID(id)
		decoded, err := DecodeUID(uid)
		if err != nil {
			t.Fatalf("DecodeUID(%q) returned error: %v", uid, err)
		}
		if decoded != id {
			t.Fatalf("DecodeUID(%q) = %d, want %d", uid, decoded, id)
		}
	}
}

func TestDecodeUIDRejectsGarbage(t *testing.T) {
	invalid := []string{
		"",
		"%%%",
		EncodeUID(0),
		"aGVsbG8", // decodes to "hello", not a number
	}
	for _, uid := range invalid {
		if _, err := DecodeUID(uid); err == nil {
			t.Errorf("DecodeUID(%q) accepted invalid input", uid)
		}
	}
}
