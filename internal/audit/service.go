package audit

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// MaxPage is the highest page whose offset still fits the int4 OFFSET
// parameter at the largest page size.
const MaxPage = math.MaxInt32/maxPageSize + 1

// ErrPageOutOfRange is returned when the requested page exceeds MaxPage.
var ErrPageOutOfRange = errors.New("audit: page out of range")

// Repository is the storage port used by Service.
type Repository interface {
	Window(ctx context.Context, p WindowParams) ([]TimelineRow, error)
}

// Service serves the user administration audit timeline.
type Service struct {
	repo Repository
}

// NewService builds a timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of audit rows. One extra row is fetched to
// decide whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		return Result{}, ErrPageOutOfRange
	}
	params := windowParams(filters)
	params.Offset = int32((page - 1) * pageSize)
	params.Limit = pgtype.Int4{Int32: int32(pageSize + 1), Valid: true}

	rows, err := s.repo.Window(ctx, params)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching row without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.Window(ctx, windowParams(filters))
}

func windowParams(f TimelineFilters) WindowParams {
	p := WindowParams{
		FromAt:   toPgTime(f.From),
		ToAt:     toPgTime(f.To),
		Action:   optionalText(f.Action),
		EntityID: optionalText(f.EntityID),
	}
	if f.ActorID > 0 {
		p.ActorID = pgtype.Int8{Int64: f.ActorID, Valid: true}
	}
	return p
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
