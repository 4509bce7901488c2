package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

// MemoryStore is an in-memory, thread-safe Store implementation.
// It is primarily useful for testing and for single-process deployments
// that do not require durable persistence across restarts.
//
// Transactions serialise on one mutex and restore a snapshot when fn fails,
// so a failed unit of work leaves no partial writes behind.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	seq      uint64
	order    map[uuid.UUID]uint64
	comments map[uuid.UUID]model.Comment
	reports  map[uuid.UUID]model.Report
	actions  map[uuid.UUID]model.ModerationAction
	posts    map[uuid.UUID]model.Post
}

func (d *memData) clone() memData {
	return memData{
		seq:      d.seq,
		order:    maps.Clone(d.order),
		comments: maps.Clone(d.comments),
		reports:  maps.Clone(d.reports),
		actions:  maps.Clone(d.actions),
		posts:    maps.Clone(d.posts),
	}
}

func (d *memData) stamp(id uuid.UUID) {
	d.seq++
	d.order[id] = d.seq
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memData{
			order:    make(map[uuid.UUID]uint64),
			comments: make(map[uuid.UUID]model.Comment),
			reports:  make(map[uuid.UUID]model.Report),
			actions:  make(map[uuid.UUID]model.ModerationAction),
			posts:    make(map[uuid.UUID]model.Post),
		},
	}
}

func (s *MemoryStore) Comments() CommentRepo { return memComments{s} }
func (s *MemoryStore) Reports() ReportRepo   { return memReports{s} }
func (s *MemoryStore) Actions() ActionRepo   { return memActions{s} }
func (s *MemoryStore) Posts() PostRepo       { return memPosts{s} }

// WithTx implements Store.
func (s *MemoryStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&MemoryStore{mu: s.mu, data: s.data, inTx: true}); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// guard locks the store for a single call made outside a transaction.
func (s *MemoryStore) guard() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// page sorts items by col (falling back to insertion order) and cuts out
// the requested window.
func page[T any](d *memData, items []T, p model.PageRequest, id func(T) uuid.UUID, col func(a, b T, col string) int) []T {
	slices.SortFunc(items, func(a, b T) int {
		c := col(a, b, p.Sort)
		if c == 0 {
			c = cmp.Compare(d.order[id(a)], d.order[id(b)])
		}
		if p.Desc {
			return -c
		}
		return c
	})
	start := min(p.Offset(), len(items))
	end := min(start+p.Limit, len(items))
	return items[start:end]
}

func ptrs[T any](items []T) []*T {
	out := make([]*T, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out
}

// ── comments ─────────────────────────────────────────────────────────────────

type memComments struct{ s *MemoryStore }

func (r memComments) Create(_ context.Context, c *model.Comment) error {
	defer r.s.guard()()
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.State == "" {
		c.State = model.CommentActive
	}
	r.s.data.comments[c.ID] = *c
	r.s.data.stamp(c.ID)
	return nil
}

func (r memComments) Get(_ context.Context, id uuid.UUID, _ Lock) (*model.Comment, error) {
	defer r.s.guard()()
	c, ok := r.s.data.comments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &c, nil
}

func (r memComments) Update(_ context.Context, c *model.Comment) error {
	defer r.s.guard()()
	cur, ok := r.s.data.comments[c.ID]
	if !ok || !cur.IsActive() {
		return model.ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	cur.Body = c.Body
	cur.IsEdited = c.IsEdited
	cur.ModeratorEdited = c.ModeratorEdited
	cur.UpdatedAt = c.UpdatedAt
	r.s.data.comments[c.ID] = cur
	return nil
}

func (r memComments) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.guard()()
	cur, ok := r.s.data.comments[id]
	if !ok || !cur.IsActive() {
		return model.ErrNotFound
	}
	cur.State = model.CommentSoftDeleted
	cur.DeletedAt = &at
	cur.UpdatedAt = at
	r.s.data.comments[id] = cur
	return nil
}

func (r memComments) List(_ context.Context, f model.CommentFilter, p model.PageRequest) ([]*model.Comment, int64, error) {
	defer r.s.guard()()
	var matched []model.Comment
	for _, c := range r.s.data.comments {
		switch {
		case f.PostID != nil && c.PostID != *f.PostID,
			f.ParentID != nil && (c.ParentID == nil || *c.ParentID != *f.ParentID),
			f.AuthorID != nil && c.AuthorID != *f.AuthorID,
			f.RootsOnly && c.ParentID != nil,
			!f.IncludeDeleted && !c.IsActive():
			continue
		}
		matched = append(matched, c)
	}
	total := int64(len(matched))
	out := page(r.s.data, matched, p,
		func(c model.Comment) uuid.UUID { return c.ID },
		func(a, b model.Comment, col string) int {
			switch col {
			case "updated_at":
				return a.UpdatedAt.Compare(b.UpdatedAt)
			case "nesting_level":
				return cmp.Compare(a.NestingLevel, b.NestingLevel)
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	return ptrs(out), total, nil
}

// ── reports ──────────────────────────────────────────────────────────────────

type memReports struct{ s *MemoryStore }

func (r memReports) Create(_ context.Context, report *model.Report) error {
	defer r.s.guard()()
	for _, existing := range r.s.data.reports {
		if existing.Status == model.ReportPending &&
			existing.ReporterID == report.ReporterID &&
			sameRef(existing.TargetPostID, report.TargetPostID) &&
			sameRef(existing.TargetCommentID, report.TargetCommentID) {
			return model.ErrConflict
		}
	}
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()
	report.Status = model.ReportPending
	r.s.data.reports[report.ID] = *report
	r.s.data.stamp(report.ID)
	return nil
}

func (r memReports) Get(_ context.Context, id uuid.UUID, _ Lock) (*model.Report, error) {
	defer r.s.guard()()
	rpt, ok := r.s.data.reports[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &rpt, nil
}

func (r memReports) Resolve(_ context.Context, report *model.Report) error {
	defer r.s.guard()()
	cur, ok := r.s.data.reports[report.ID]
	if !ok {
		return model.ErrNotFound
	}
	if cur.Status != model.ReportPending {
		return model.ErrInvalidStateTransition
	}
	cur.Status = report.Status
	cur.ResolutionNote = report.ResolutionNote
	cur.ResolvedAt = report.ResolvedAt
	cur.ResolvedBy = report.ResolvedBy
	r.s.data.reports[report.ID] = cur
	return nil
}

func (r memReports) List(_ context.Context, f model.ReportFilter, p model.PageRequest) ([]*model.Report, int64, error) {
	defer r.s.guard()()
	var matched []model.Report
	for _, rpt := range r.s.data.reports {
		if f.Status != "" && rpt.Status != f.Status {
			continue
		}
		if f.ReporterID != nil && rpt.ReporterID != *f.ReporterID {
			continue
		}
		matched = append(matched, rpt)
	}
	total := int64(len(matched))
	out := page(r.s.data, matched, p,
		func(r model.Report) uuid.UUID { return r.ID },
		func(a, b model.Report, col string) int {
			if col == "status" {
				return cmp.Compare(a.Status, b.Status)
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	return ptrs(out), total, nil
}

// ── moderation actions ───────────────────────────────────────────────────────

type memActions struct{ s *MemoryStore }

func (r memActions) Create(_ context.Context, a *model.ModerationAction) error {
	defer r.s.guard()()
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	r.s.data.actions[a.ID] = *a
	r.s.data.stamp(a.ID)
	return nil
}

func (r memActions) Get(_ context.Context, id uuid.UUID, _ Lock) (*model.ModerationAction, error) {
	defer r.s.guard()()
	a, ok := r.s.data.actions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &a, nil
}

func (r memActions) Retire(_ context.Context, id, by uuid.UUID, at time.Time) error {
	defer r.s.guard()()
	a, ok := r.s.data.actions[id]
	if !ok || a.IsRetired() {
		return model.ErrNotFound
	}
	a.RetiredAt = &at
	a.RetiredBy = &by
	r.s.data.actions[id] = a
	return nil
}

func (r memActions) List(_ context.Context, f model.ActionFilter, p model.PageRequest) ([]*model.ModerationAction, int64, error) {
	defer r.s.guard()()
	var matched []model.ModerationAction
	for _, a := range r.s.data.actions {
		switch {
		case f.ReportID != nil && !sameRef(a.ReportID, f.ReportID),
			f.TargetPostID != nil && !sameRef(a.TargetPostID, f.TargetPostID),
			f.TargetCommentID != nil && !sameRef(a.TargetCommentID, f.TargetCommentID),
			f.ActionType != "" && a.ActionType != f.ActionType,
			!f.IncludeRetired && a.IsRetired():
			continue
		}
		matched = append(matched, a)
	}
	total := int64(len(matched))
	out := page(r.s.data, matched, p,
		func(a model.ModerationAction) uuid.UUID { return a.ID },
		func(a, b model.ModerationAction, col string) int {
			if col == "action_type" {
				return cmp.Compare(a.ActionType, b.ActionType)
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	return ptrs(out), total, nil
}

// ── posts ────────────────────────────────────────────────────────────────────

type memPosts struct{ s *MemoryStore }

func (r memPosts) Create(_ context.Context, p *model.Post) error {
	defer r.s.guard()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.s.data.posts[p.ID] = *p
	r.s.data.stamp(p.ID)
	return nil
}

func (r memPosts) Get(_ context.Context, id uuid.UUID, _ Lock) (*model.Post, error) {
	defer r.s.guard()()
	p, ok := r.s.data.posts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (r memPosts) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.guard()()
	p, ok := r.s.data.posts[id]
	if !ok || p.DeletedAt != nil {
		return model.ErrNotFound
	}
	p.DeletedAt = &at
	r.s.data.posts[id] = p
	return nil
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
