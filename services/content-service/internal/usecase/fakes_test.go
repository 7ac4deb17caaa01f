package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

var testLogger = zerolog.Nop()

func parseID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, mongo.ErrNoDocuments
	}
	return objectID, nil
}

type fakeFormationRepo struct {
	mu         sync.Mutex
	formations map[bson.ObjectID]*model.Formation
	counterErr error
}

func newFakeFormationRepo() *fakeFormationRepo {
	return &fakeFormationRepo{formations: map[bson.ObjectID]*model.Formation{}}
}

func (f *fakeFormationRepo) CreateFormation(_ context.Context, formation *model.Formation) (*model.Formation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.formations {
		if existing.Slug == formation.Slug {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}

	formation.ID = bson.NewObjectID()
	formation.CreatedAt = time.Now()
	formation.UpdatedAt = formation.CreatedAt
	copied := *formation
	f.formations[formation.ID] = &copied
	return formation, nil
}

func (f *fakeFormationRepo) GetFormation(_ context.Context, id string) (*model.Formation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	formation, ok := f.formations[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *formation
	return &copied, nil
}

func (f *fakeFormationRepo) GetFormationBySlug(_ context.Context, slug string) (*model.Formation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, formation := range f.formations {
		if formation.Slug == slug {
			copied := *formation
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeFormationRepo) UpdateFormation(
	_ context.Context,
	id string,
	params repository.UpdateFormationParams,
) (*model.Formation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	formation, ok := f.formations[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	changed := false
	set := func(apply func()) {
		apply()
		changed = true
	}
	if params.Title != nil {
		set(func() { formation.Title = *params.Title })
	}
	if params.Slug != nil {
		set(func() { formation.Slug = *params.Slug })
	}
	if params.Description != nil {
		set(func() { formation.Description = *params.Description })
	}
	if params.Level != nil {
		set(func() { formation.Level = *params.Level })
	}
	if params.Tags != nil {
		set(func() { formation.Tags = *params.Tags })
	}
	if params.Published != nil {
		set(func() { formation.Published = *params.Published })
	}
	if !changed {
		return nil, repository.ErrNoFormationFields
	}

	copied := *formation
	return &copied, nil
}

func (f *fakeFormationRepo) DeleteFormation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, ok := f.formations[objectID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.formations, objectID)
	return nil
}

func (f *fakeFormationRepo) filtered(params repository.FilterFormationsParams) []*model.Formation {
	out := make([]*model.Formation, 0, len(f.formations))
	for _, formation := range f.formations {
		if params.PublishedOnly && !formation.Published {
			continue
		}
		if params.Category != "" && formation.Category != params.Category {
			continue
		}
		copied := *formation
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (f *fakeFormationRepo) ListFormations(
	_ context.Context,
	params repository.FilterFormationsParams,
) ([]*model.Formation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filtered(params), nil
}

func (f *fakeFormationRepo) CountFormations(_ context.Context, params repository.FilterFormationsParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filtered(params))), nil
}

func (f *fakeFormationRepo) IncrementCounter(
	_ context.Context,
	id string,
	field repository.CounterField,
	delta int64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.counterErr != nil {
		return f.counterErr
	}
	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	formation, ok := f.formations[objectID]
	if !ok {
		return nil
	}

	var target *int64
	switch field {
	case repository.FieldViewCount:
		target = &formation.ViewCount
	case repository.FieldLikeCount:
		target = &formation.LikeCount
	case repository.FieldChapterCount:
		target = &formation.ChapterCount
	default:
		return nil
	}
	if *target+delta >= 0 {
		*target += delta
	}
	return nil
}

func (f *fakeFormationRepo) add(formation *model.Formation) *model.Formation {
	f.mu.Lock()
	defer f.mu.Unlock()

	formation.ID = bson.NewObjectID()
	copied := *formation
	f.formations[formation.ID] = &copied
	return formation
}

func (f *fakeFormationRepo) get(id bson.ObjectID) *model.Formation {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.formations[id]
	return &copied
}

type fakeChapterRepo struct {
	mu       sync.Mutex
	chapters map[bson.ObjectID]*model.Chapter
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{chapters: map[bson.ObjectID]*model.Chapter{}}
}

func (f *fakeChapterRepo) CreateChapter(_ context.Context, chapter *model.Chapter) (*model.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chapter.ID = bson.NewObjectID()
	copied := *chapter
	f.chapters[chapter.ID] = &copied
	return chapter, nil
}

func (f *fakeChapterRepo) GetChapter(_ context.Context, id string) (*model.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	chapter, ok := f.chapters[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *chapter
	return &copied, nil
}

func (f *fakeChapterRepo) UpdateChapter(
	_ context.Context,
	id string,
	params repository.UpdateChapterParams,
) (*model.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params == (repository.UpdateChapterParams{}) {
		return nil, repository.ErrNoChapterFields
	}
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	chapter, ok := f.chapters[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Title != nil {
		chapter.Title = *params.Title
	}
	if params.Published != nil {
		chapter.Published = *params.Published
	}
	copied := *chapter
	return &copied, nil
}

func (f *fakeChapterRepo) DeleteChapter(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, ok := f.chapters[objectID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.chapters, objectID)
	return nil
}

func (f *fakeChapterRepo) ListChapters(
	_ context.Context,
	formationID string,
	publishedOnly bool,
) ([]*model.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(formationID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Chapter, 0)
	for _, chapter := range f.chapters {
		if chapter.FormationID != objectID || (publishedOnly && !chapter.Published) {
			continue
		}
		copied := *chapter
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeChapterRepo) NextPosition(_ context.Context, formationID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(formationID)
	if err != nil {
		return 0, err
	}
	last := 0
	for _, chapter := range f.chapters {
		if chapter.FormationID == objectID && chapter.Position > last {
			last = chapter.Position
		}
	}
	return last + 1, nil
}

func (f *fakeChapterRepo) ReorderChapters(_ context.Context, _ string, chapterIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, id := range chapterIDs {
		objectID, err := parseID(id)
		if err != nil {
			return repository.ErrChapterOrderMismatch
		}
		f.chapters[objectID].Position = i + 1
	}
	return nil
}

func (f *fakeChapterRepo) DeleteChaptersByFormation(_ context.Context, formationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(formationID)
	if err != nil {
		return 0, err
	}
	var deleted int64
	for id, chapter := range f.chapters {
		if chapter.FormationID == objectID {
			delete(f.chapters, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeChapterRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chapters)
}

type fakeLibraryRepo struct {
	mu    sync.Mutex
	kind  model.LibraryKind
	items map[bson.ObjectID]*model.LibraryItem
}

func newFakeLibraryRepo(kind model.LibraryKind) *fakeLibraryRepo {
	return &fakeLibraryRepo{kind: kind, items: map[bson.ObjectID]*model.LibraryItem{}}
}

func (f *fakeLibraryRepo) Kind() model.LibraryKind {
	return f.kind
}

func (f *fakeLibraryRepo) CreateItem(_ context.Context, item *model.LibraryItem) (*model.LibraryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item.ID = bson.NewObjectID()
	item.Kind = f.kind
	copied := *item
	f.items[item.ID] = &copied
	return item, nil
}

func (f *fakeLibraryRepo) GetItem(_ context.Context, id string) (*model.LibraryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, ok := f.items[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *item
	return &copied, nil
}

func (f *fakeLibraryRepo) UpdateItem(
	_ context.Context,
	id string,
	params repository.UpdateLibraryItemParams,
) (*model.LibraryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params == (repository.UpdateLibraryItemParams{}) {
		return nil, repository.ErrNoLibraryItemFields
	}
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, ok := f.items[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Title != nil {
		item.Title = *params.Title
	}
	if params.Tags != nil {
		item.Tags = *params.Tags
	}
	if params.Published != nil {
		item.Published = *params.Published
	}
	copied := *item
	return &copied, nil
}

func (f *fakeLibraryRepo) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, ok := f.items[objectID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.items, objectID)
	return nil
}

func (f *fakeLibraryRepo) filtered(params repository.FilterLibraryItemsParams) []*model.LibraryItem {
	out := make([]*model.LibraryItem, 0)
	for _, item := range f.items {
		if params.PublishedOnly && !item.Published {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out
}

func (f *fakeLibraryRepo) ListItems(
	_ context.Context,
	params repository.FilterLibraryItemsParams,
) ([]*model.LibraryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filtered(params), nil
}

func (f *fakeLibraryRepo) CountItems(_ context.Context, params repository.FilterLibraryItemsParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filtered(params))), nil
}

func (f *fakeLibraryRepo) IncrementCounter(
	_ context.Context,
	id string,
	field repository.CounterField,
	delta int64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	item, ok := f.items[objectID]
	if !ok {
		return nil
	}
	switch field {
	case repository.FieldLikeCount:
		if item.LikeCount+delta >= 0 {
			item.LikeCount += delta
		}
	case repository.FieldUsageCount:
		item.UsageCount += delta
	}
	return nil
}

func (f *fakeLibraryRepo) add(item *model.LibraryItem) *model.LibraryItem {
	f.mu.Lock()
	defer f.mu.Unlock()

	item.ID = bson.NewObjectID()
	item.Kind = f.kind
	copied := *item
	f.items[item.ID] = &copied
	return item
}

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes []*model.Like
}

func (f *fakeLikeRepo) CreateLike(_ context.Context, like *model.Like) (*model.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.likes {
		if existing.UserID == like.UserID && existing.TargetKind == like.TargetKind &&
			existing.TargetID == like.TargetID {
			return nil, repository.ErrAlreadyLiked
		}
	}
	like.ID = bson.NewObjectID()
	like.CreatedAt = time.Now()
	copied := *like
	f.likes = append(f.likes, &copied)
	return like, nil
}

func (f *fakeLikeRepo) DeleteLike(
	_ context.Context,
	userID string,
	kind model.TargetKind,
	targetID bson.ObjectID,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, like := range f.likes {
		if like.UserID == userID && like.TargetKind == kind && like.TargetID == targetID {
			f.likes = append(f.likes[:i], f.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLikeRepo) ListLikesByUser(
	_ context.Context,
	userID string,
	kind model.TargetKind,
) ([]*model.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*model.Like, 0)
	for _, like := range f.likes {
		if like.UserID == userID && (kind == "" || like.TargetKind == kind) {
			copied := *like
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLikeRepo) DeleteLikesByTarget(
	_ context.Context,
	kind model.TargetKind,
	targetID bson.ObjectID,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.likes[:0]
	var deleted int64
	for _, like := range f.likes {
		if like.TargetKind == kind && like.TargetID == targetID {
			deleted++
			continue
		}
		kept = append(kept, like)
	}
	f.likes = kept
	return deleted, nil
}

func (f *fakeLikeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likes)
}
