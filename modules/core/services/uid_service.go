package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-faster/errors"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
)

// UIDService mints globally unique, human-readable identifiers such as
// ACM-CLT003: a tenant prefix, a kind tag and the tenant-local sequence
// number. The prefix is derived from the company name, so two tenants can
// share one; the registry keeps the assembled UID unique anyway.
type UIDService struct {
	repo sequence.Repository
}

func NewUIDService(repo sequence.Repository) *UIDService {
	return &UIDService{repo: repo}
}

// Prefix derives a three-letter tenant tag from a company name: the initials
// of its first words, padded with the remaining letters of the first word
// when there are fewer than three. "Acme" becomes ACM, "Acme Estates" AEC,
// "Blue Hill Realty" BHR. Prefixes are not unique across tenants; the UID
// registry handles collisions.
func Prefix(name string) string {
	var initials []rune
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		for _, r := range w {
			initials = append(initials, unicode.ToUpper(r))
			break
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) < 3 && len(words) > 0 {
		rest := []rune(words[0])
		for _, r := range rest[1:] {
			initials = append(initials, unicode.ToUpper(r))
			if len(initials) == 3 {
				break
			}
		}
	}
	for len(initials) < 3 {
		initials = append(initials, 'X')
	}
	return string(initials)
}

// Allocate mints the next UID of the given kind for the tenant. The sequence
// increment is atomic in storage; the display form is then claimed in the
// global registry. A registry collision (two tenants sharing a prefix and
// landing on the same number) is resolved by suffixing the first four hex
// characters of the tenant ID, which is stable and collision-free for any
// realistic tenant count. The cross-tenant existence check catches the
// collision up front; the claim itself stays the arbiter under races.
func (s *UIDService) Allocate(ctx context.Context, t *tenant.Tenant, kind sequence.Kind) (sequence.UID, error) {
	n, err := s.repo.Next(ctx, t.ID(), kind)
	if err != nil {
		return sequence.UID{}, err
	}
	uid := sequence.UID{
		TenantID: t.ID(),
		Kind:     kind,
		Sequence: n,
		Display:  fmt.Sprintf("%s-%s%03d", Prefix(t.Name()), kind.Code(), n),
	}

	taken, err := s.repo.ExistsCrossTenant(ctx, uid.Display)
	if err != nil {
		return sequence.UID{}, &sequence.AllocationError{TenantID: t.ID(), Kind: kind, Err: err}
	}
	if taken {
		uid.Display = fmt.Sprintf("%s-%s", uid.Display, tenantDiscriminator(t))
	}

	err = s.repo.Register(ctx, uid)
	if errors.Is(err, sequence.ErrUIDTaken) && !taken {
		uid.Display = fmt.Sprintf("%s-%s", uid.Display, tenantDiscriminator(t))
		err = s.repo.Register(ctx, uid)
	}
	if err != nil {
		return sequence.UID{}, &sequence.AllocationError{TenantID: t.ID(), Kind: kind, Err: err}
	}
	return uid, nil
}

func tenantDiscriminator(t *tenant.Tenant) string {
	id := t.ID()
	return strings.ToUpper(hex.EncodeToString(id[:2]))
}
