// Package validate classifies candidate emails as deliverable or not.
package validate

import (
	"context"
	"net"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Validation failure reasons.
const (
	ReasonSyntax     = "invalid syntax"
	ReasonDisposable = "disposable email"
	ReasonNoMX       = "no mail-exchange records"
)

// Result classifies one email.
type Result struct {
	Email  string `json:"email"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// syntaxPattern is the standard local@domain.tld shape.
var syntaxPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MXResolver looks up mail-exchange records for a domain. net.Resolver
// satisfies it; tests substitute a mock.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator runs the three-step validation chain: syntax, disposable
// domain, MX lookup. Each step only runs if the previous passed — the
// DNS lookup is the expensive one and never fires on malformed input.
type Validator struct {
	resolver   MXResolver
	disposable map[string]bool
}

// NewValidator creates a Validator. A nil resolver defaults to
// net.DefaultResolver; disposable domains are injected configuration.
func NewValidator(resolver MXResolver, disposableDomains []string) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	disposable := make(map[string]bool, len(disposableDomains))
	for _, d := range disposableDomains {
		disposable[strings.ToLower(d)] = true
	}
	return &Validator{
		resolver:   resolver,
		disposable: disposable,
	}
}

// Validate classifies a single email.
func (v *Validator) Validate(ctx context.Context, email string) Result {
	if !syntaxPattern.MatchString(email) {
		return Result{Email: email, Reason: ReasonSyntax}
	}

	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if v.disposable[domain] {
		return Result{Email: email, Reason: ReasonDisposable}
	}

	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		zap.L().Debug("validate: no MX records",
			zap.String("domain", domain),
			zap.Error(err),
		)
		return Result{Email: email, Reason: ReasonNoMX}
	}

	return Result{Email: email, Valid: true}
}

// ValidateAll validates emails concurrently and returns one result per
// input, in input order. Validations are independent; the fan-out width
// is a handful of emails per business, so it is unbounded.
func (v *Validator) ValidateAll(ctx context.Context, emails []string) []Result {
	results := make([]Result, len(emails))

	g, gCtx := errgroup.WithContext(ctx)
	for i, email := range emails {
		i, email := i, email
		g.Go(func() error {
			results[i] = v.Validate(gCtx, email)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
