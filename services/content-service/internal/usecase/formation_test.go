package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

type formationFixture struct {
	formations *fakeFormationRepo
	chapters   *fakeChapterRepo
	likes      *fakeLikeRepo
	uc         FormationUsecase
}

func newFormationFixture() *formationFixture {
	f := &formationFixture{
		formations: newFakeFormationRepo(),
		chapters:   newFakeChapterRepo(),
		likes:      &fakeLikeRepo{},
	}
	f.uc = NewFormationUsecase(f.formations, f.chapters, f.likes, &testLogger)
	return f
}

var (
	user  = Viewer{UserID: "user-1"}
	admin = Viewer{UserID: "admin-1", Admin: true}
)

func TestFormationCreate_GeneratesUniqueSlugs(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	params := CreateFormationParams{Title: "Écrire un Prompt efficace", Level: model.LevelBeginner}

	first, err := f.uc.Create(ctx, params, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "ecrire-un-prompt-efficace", first.Slug)
	assert.Equal(t, "admin-1", first.CreatedBy)

	second, err := f.uc.Create(ctx, params, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "ecrire-un-prompt-efficace-2", second.Slug)
}

func TestFormationCreate_Validation(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, CreateFormationParams{Title: "Go", Level: "expert"}, "admin-1")
	require.ErrorIs(t, err, ErrInvalidLevel)

	_, err = f.uc.Create(ctx, CreateFormationParams{Title: "Go", Slug: "go", Level: model.LevelAdvanced}, "admin-1")
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, CreateFormationParams{Title: "Go 2", Slug: "Go", Level: model.LevelAdvanced}, "admin-1")
	require.ErrorIs(t, err, ErrSlugTaken)

	_, err = f.uc.Create(ctx, CreateFormationParams{Title: "Go 3", Slug: "!!!", Level: model.LevelAdvanced}, "admin-1")
	require.ErrorIs(t, err, ErrInvalidSlug)
}

func TestFormationCreate_NormalizesTags(t *testing.T) {
	f := newFormationFixture()

	formation, err := f.uc.Create(context.Background(), CreateFormationParams{
		Title: "Marketing",
		Level: model.LevelBeginner,
		Tags:  []string{" SEO", "seo", "", "Ads"},
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"seo", "ads"}, formation.Tags)
}

func TestFormationGet_Visibility(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	draft := f.formations.add(&model.Formation{Title: "Draft", Slug: "draft"})
	live := f.formations.add(&model.Formation{Title: "Live", Slug: "live", Published: true})

	_, err := f.uc.Get(ctx, user, draft.ID.Hex())
	require.ErrorIs(t, err, ErrFormationNotFound)

	_, err = f.uc.GetBySlug(ctx, user, "draft")
	require.ErrorIs(t, err, ErrFormationNotFound)

	got, err := f.uc.Get(ctx, admin, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)

	got, err = f.uc.GetBySlug(ctx, user, "live")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
	assert.Equal(t, int64(1), got.ViewCount)

	_, err = f.uc.Get(ctx, user, "not-an-id")
	require.ErrorIs(t, err, ErrFormationNotFound)

	_, err = f.uc.Get(ctx, user, bson.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrFormationNotFound)
}

func TestFormationGet_CountsViews(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	live := f.formations.add(&model.Formation{Title: "Live", Slug: "live", Published: true})

	for range 3 {
		_, err := f.uc.Get(ctx, user, live.ID.Hex())
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), f.formations.get(live.ID).ViewCount)
}

func TestFormationGet_ViewCountFailureIsNotFatal(t *testing.T) {
	f := newFormationFixture()
	live := f.formations.add(&model.Formation{Title: "Live", Slug: "live", Published: true})
	f.formations.counterErr = assert.AnError

	got, err := f.uc.Get(context.Background(), user, live.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, got.ViewCount)
}

func TestFormationList_HidesDraftsFromUsers(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	f.formations.add(&model.Formation{Title: "A", Slug: "a", Published: true})
	f.formations.add(&model.Formation{Title: "B", Slug: "b"})

	// PublishedOnly from the caller is ignored; visibility follows the viewer.
	items, total, err := f.uc.List(ctx, user, repository.FilterFormationsParams{PublishedOnly: false})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)

	items, total, err = f.uc.List(ctx, admin, repository.FilterFormationsParams{PublishedOnly: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), total)
}

func TestFormationUpdate(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	one := f.formations.add(&model.Formation{Title: "One", Slug: "one"})
	f.formations.add(&model.Formation{Title: "Two", Slug: "two"})

	taken := "two"
	_, err := f.uc.Update(ctx, one.ID.Hex(), repository.UpdateFormationParams{Slug: &taken})
	require.ErrorIs(t, err, ErrSlugTaken)

	same := "One"
	updated, err := f.uc.Update(ctx, one.ID.Hex(), repository.UpdateFormationParams{Slug: &same})
	require.NoError(t, err)
	assert.Equal(t, "one", updated.Slug)

	bad := "expert"
	_, err = f.uc.Update(ctx, one.ID.Hex(), repository.UpdateFormationParams{Level: &bad})
	require.ErrorIs(t, err, ErrInvalidLevel)

	_, err = f.uc.Update(ctx, one.ID.Hex(), repository.UpdateFormationParams{})
	require.ErrorIs(t, err, ErrNothingToUpdate)

	title := "x"
	_, err = f.uc.Update(ctx, bson.NewObjectID().Hex(), repository.UpdateFormationParams{Title: &title})
	require.ErrorIs(t, err, ErrFormationNotFound)
}

func TestFormationDelete_Cascades(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	doomed := f.formations.add(&model.Formation{Title: "Doomed", Slug: "doomed", Published: true})
	kept := f.formations.add(&model.Formation{Title: "Kept", Slug: "kept", Published: true})

	_, err := f.chapters.CreateChapter(ctx, &model.Chapter{FormationID: doomed.ID, Position: 1})
	require.NoError(t, err)
	_, err = f.chapters.CreateChapter(ctx, &model.Chapter{FormationID: kept.ID, Position: 1})
	require.NoError(t, err)
	_, err = f.likes.CreateLike(ctx, &model.Like{UserID: "u", TargetKind: model.TargetFormation, TargetID: doomed.ID})
	require.NoError(t, err)
	_, err = f.likes.CreateLike(ctx, &model.Like{UserID: "u", TargetKind: model.TargetFormation, TargetID: kept.ID})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, doomed.ID.Hex()))

	assert.Equal(t, 1, f.chapters.count())
	assert.Equal(t, 1, f.likes.count())

	require.ErrorIs(t, f.uc.Delete(ctx, doomed.ID.Hex()), ErrFormationNotFound)
}

func TestFormationBulk(t *testing.T) {
	f := newFormationFixture()
	ctx := context.Background()

	a := f.formations.add(&model.Formation{Title: "A", Slug: "a"})
	b := f.formations.add(&model.Formation{Title: "B", Slug: "b"})
	missing := bson.NewObjectID().Hex()

	result, err := f.uc.Bulk(ctx, []string{a.ID.Hex(), missing, b.ID.Hex(), a.ID.Hex()}, BulkPublish)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, BulkFailure{ID: missing, Error: "not found"}, result.Failed[0])
	assert.True(t, f.formations.get(a.ID).Published)
	assert.True(t, f.formations.get(b.ID).Published)

	result, err = f.uc.Bulk(ctx, []string{a.ID.Hex()}, BulkDelete)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Failed)

	_, err = f.uc.Bulk(ctx, nil, BulkPublish)
	require.ErrorIs(t, err, ErrInvalidBulkInput)

	_, err = f.uc.Bulk(ctx, []string{b.ID.Hex()}, "archive")
	require.ErrorIs(t, err, ErrInvalidBulkInput)
}
