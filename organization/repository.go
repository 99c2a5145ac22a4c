package organization

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultPageSize applies when the request names no page size.
	DefaultPageSize = 10
	// MaxPageSize caps the per-page record count.
	MaxPageSize = 100
)

// ErrHasDependents rejects deleting an organization that still has members
// or startups attached.
var ErrHasDependents = errors.New(
	"organization has associated users or startups",
	errors.CategoryConflict,
).WithTextCode("ORGANIZATION_HAS_DEPENDENTS")

// ListQuery is the paging and filtering input for listing organizations.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Page is one page of organizations plus paging bookkeeping.
type Page struct {
	Data       []*Organization `json:"data"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}

// Repository manages organization records.
type Repository interface {
	List(ctx context.Context, query ListQuery) (*Page, error)
	GetByID(ctx context.Context, id string) (*Organization, error)
	Create(ctx context.Context, org *Organization) (*Organization, error)
	Update(ctx context.Context, org *Organization) (*Organization, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, orgID, userID uuid.UUID, role MemberRole) (*Membership, error)
	RemoveMember(ctx context.Context, membershipID string) error

	Startups() repository.Repository[*Startup]
	Memberships() repository.Repository[*Membership]
}

type organizations struct {
	repository.Repository[*Organization]
	db          *bun.DB
	startups    repository.Repository[*Startup]
	memberships repository.Repository[*Membership]
}

var _ Repository = (*organizations)(nil)

// NewRepository creates a Bun-backed organizations repository.
func NewRepository(db *bun.DB) Repository {
	return &organizations{
		Repository:  newOrganizationRepo(db),
		db:          db,
		startups:    newStartupRepo(db),
		memberships: newMembershipRepo(db),
	}
}

func newOrganizationRepo(db *bun.DB) repository.Repository[*Organization] {
	return repository.NewRepository[*Organization](db, repository.ModelHandlers[*Organization]{
		NewRecord: func() *Organization { return &Organization{} },
		GetID: func(o *Organization) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Organization, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
	})
}

func newStartupRepo(db *bun.DB) repository.Repository[*Startup] {
	return repository.NewRepository[*Startup](db, repository.ModelHandlers[*Startup]{
		NewRecord: func() *Startup { return &Startup{} },
		GetID: func(s *Startup) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Startup, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})
}

func newMembershipRepo(db *bun.DB) repository.Repository[*Membership] {
	return repository.NewRepository[*Membership](db, repository.ModelHandlers[*Membership]{
		NewRecord: func() *Membership { return &Membership{} },
		GetID: func(m *Membership) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Membership, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})
}

func (r *organizations) List(ctx context.Context, query ListQuery) (*Page, error) {
	query = query.normalized()

	records := make([]*Organization, 0, query.PageSize)
	q := r.db.NewSelect().
		Model(&records).
		Relation("Memberships")

	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("lower(?TableAlias.name) LIKE ?", pattern).
				WhereOr("lower(?TableAlias.email) LIKE ?", pattern).
				WhereOr("?TableAlias.phone LIKE ?", pattern)
		})
	}

	total, err := q.
		Order("created_at DESC").
		Limit(query.PageSize).
		Offset((query.Page - 1) * query.PageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (total + query.PageSize - 1) / query.PageSize

	return &Page{
		Data:       records,
		Total:      total,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: totalPages,
		HasNext:    query.Page < totalPages,
		HasPrev:    query.Page > 1,
	}, nil
}

func (r *organizations) GetByID(ctx context.Context, id string) (*Organization, error) {
	record := &Organization{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Memberships").
		Relation("Startups").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *organizations) Create(ctx context.Context, org *Organization) (*Organization, error) {
	return r.Repository.Create(ctx, org)
}

func (r *organizations) Update(ctx context.Context, org *Organization) (*Organization, error) {
	return r.Repository.Update(ctx, org)
}

// Delete removes an organization. It refuses with ErrHasDependents while
// memberships or startups still reference it.
func (r *organizations) Delete(ctx context.Context, id string) error {
	members, err := r.db.NewSelect().
		Model((*Membership)(nil)).
		Where("organization_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}

	startups, err := r.db.NewSelect().
		Model((*Startup)(nil)).
		Where("organization_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}

	if members > 0 || startups > 0 {
		return ErrHasDependents
	}

	_, err = r.db.NewDelete().
		Model((*Organization)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *organizations) AddMember(ctx context.Context, orgID, userID uuid.UUID, role MemberRole) (*Membership, error) {
	if role == "" {
		role = MemberRoleMember
	}
	return r.memberships.Create(ctx, &Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	})
}

func (r *organizations) RemoveMember(ctx context.Context, membershipID string) error {
	_, err := r.db.NewDelete().
		Model((*Membership)(nil)).
		Where("id = ?", membershipID).
		Exec(ctx)
	return err
}

func (r *organizations) Startups() repository.Repository[*Startup] {
	return r.startups
}

func (r *organizations) Memberships() repository.Repository[*Membership] {
	return r.memberships
}
