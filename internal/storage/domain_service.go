// Domain lifecycle: create, delete and list domains with naming and quota
// rules.

package storage

import (
	"context"
	"slices"

	"github.com/camvine/fakesdb/internal/models"
)

// DomainService enforces the naming and quota rules over a Directory.
type DomainService struct {
	dir       *Directory
	domainCap int
}

// NewDomainService returns a DomainService with the given domain cap.
// cap <= 0 selects DefaultDomainCap.
func NewDomainService(dir *Directory, domainCap int) *DomainService {
	if domainCap <= 0 {
		domainCap = DefaultDomainCap
	}
	return &DomainService{dir: dir, domainCap: domainCap}
}

// CreateDomain creates an empty backing store for name. Creating a domain
// that already exists is a no-op. The count/create sequence is not atomic
// against concurrent creators; two simultaneous creates near the cap may
// both pass the check.
func (s *DomainService) CreateDomain(ctx context.Context, name string) error {
	if !domainNameRe.MatchString(name) {
		return models.InvalidParameterValue("DomainName", name)
	}
	names, err := s.dir.scan()
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		return nil
	}
	if len(names) >= s.domainCap {
		return models.NumberDomainsExceeded()
	}
	db, err := s.dir.open(name)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	// Initialize the attribute table up front so reads against a fresh
	// domain see an empty table instead of a missing one.
	return ensureTable(ctx, db)
}

// DeleteDomain removes the backing store for name. A missing domain is
// not an error, mirroring the real service's eventual-consistency
// semantics.
func (s *DomainService) DeleteDomain(_ context.Context, name string) error {
	if !domainNameRe.MatchString(name) {
		// Nothing such a name could refer to; treat as already gone.
		return nil
	}
	return s.dir.remove(name)
}

// ListDomains returns the names of all live domains. Callers must not
// depend on the order.
func (s *DomainService) ListDomains(_ context.Context) ([]string, error) {
	return s.dir.scan()
}
