package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"
)

const (
	// PreviewCookie is the cookie that turns on draft content.
	PreviewCookie = "portfolio_preview"

	previewCookieTTL = time.Hour
	previewMessage   = "portfolio-preview-v1"
	previewClockSkew = time.Minute
)

// Preview manages the signed cookie that enables preview mode. The cookie
// value is "<issued unix seconds>.<hex MAC>" and expires server side after
// previewCookieTTL.
type Preview struct {
	secretHash []byte
	key        [32]byte
	secure     bool
	now        func() time.Time
}

// NewPreview creates a Preview from the bcrypt hash of the preview secret.
// An empty hash disables preview mode.
func NewPreview(secretHash string, secure bool) *Preview {
	p := &Preview{secretHash: []byte(secretHash), secure: secure, now: time.Now}
	if secretHash != "" {
		p.key = blake2b.Sum256(p.secretHash)
	}
	return p
}

func (p *Preview) sign(issued int64) string {
	mac, _ := blake2b.New256(p.key[:])
	mac.Write([]byte(previewMessage + "|" + strconv.FormatInt(issued, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// token returns a cookie value issued at t.
func (p *Preview) token(t time.Time) string {
	issued := t.Unix()
	return strconv.FormatInt(issued, 10) + "." + p.sign(issued)
}

// Enabled reports whether a preview secret is configured.
func (p *Preview) Enabled() bool {
	return len(p.secretHash) > 0
}

// VerifySecret checks secret against the configured hash.
func (p *Preview) VerifySecret(secret string) bool {
	if !p.Enabled() || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.secretHash, []byte(secret)) == nil
}

// SetCookie turns preview mode on for the client.
func (p *Preview) SetCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     PreviewCookie,
		Value:    p.token(p.now()),
		Path:     "/",
		MaxAge:   int(previewCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie turns preview mode off for the client.
func (p *Preview) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     PreviewCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *Preview) valid(r *http.Request) bool {
	if !p.Enabled() {
		return false
	}
	c, err := r.Cookie(PreviewCookie)
	if err != nil {
		return false
	}
	rawIssued, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return false
	}
	issued, err := strconv.ParseInt(rawIssued, 10, 64)
	if err != nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(p.sign(issued))) != 1 {
		return false
	}
	age := p.now().Sub(time.Unix(issued, 0))
	return age >= -previewClockSkew && age <= previewCookieTTL
}

// Middleware marks requests carrying a valid preview cookie.
func (p *Preview) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.valid(r) {
			r = r.WithContext(WithPreview(r.Context(), true))
		}
		next.ServeHTTP(w, r)
	})
}

// WithPreview returns a context carrying the preview flag.
func WithPreview(ctx context.Context, on bool) context.Context {
	return context.WithValue(ctx, previewKey, on)
}

// IsPreview reports whether the request context is in preview mode.
func IsPreview(ctx context.Context) bool {
	on, _ := ctx.Value(previewKey).(bool)
	return on
}
