package absence

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tent/hawk-go"
)

// HawkSigner sets Hawk Authorization headers for absence.io.
// absence.io issues an API key id and key per user; the MAC algorithm is sha256.
type HawkSigner struct {
	creds *hawk.Credentials

	now   func() time.Time
	nonce func() string
}

// NewHawkSigner creates a signer for the given API key id and key
func NewHawkSigner(keyID, key string) *HawkSigner {
	return &HawkSigner{
		creds: &hawk.Credentials{
			ID:   keyID,
			Key:  key,
			Hash: sha256.New,
		},
		now: time.Now,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// Sign sets the Authorization header of req. The payload is not hashed.
func (s *HawkSigner) Sign(req *http.Request) {
	auth := hawk.NewRequestAuth(req, s.creds, 0)
	auth.Timestamp = s.now()
	auth.Nonce = s.nonce()

	req.Header.Set("Authorization", auth.RequestHeader())
}
