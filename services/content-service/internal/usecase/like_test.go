package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
)

type likeFixture struct {
	formations *fakeFormationRepo
	templates  *fakeLibraryRepo
	prompts    *fakeLibraryRepo
	likes      *fakeLikeRepo
	uc         LikeUsecase
}

func newLikeFixture() *likeFixture {
	f := &likeFixture{
		formations: newFakeFormationRepo(),
		templates:  newFakeLibraryRepo(model.KindTemplate),
		prompts:    newFakeLibraryRepo(model.KindPrompt),
		likes:      &fakeLikeRepo{},
	}
	f.uc = NewLikeUsecase(f.likes, f.formations, f.templates, f.prompts, &testLogger)
	return f
}

func TestLikeToggle_Formation(t *testing.T) {
	f := newLikeFixture()
	ctx := context.Background()

	formation := f.formations.add(&model.Formation{Title: "F", Slug: "f", Published: true})

	state, err := f.uc.Toggle(ctx, user, model.TargetFormation, formation.ID.Hex())
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, int64(1), state.LikeCount)

	other := Viewer{UserID: "user-2"}
	state, err = f.uc.Toggle(ctx, other, model.TargetFormation, formation.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), state.LikeCount)

	state, err = f.uc.Toggle(ctx, user, model.TargetFormation, formation.ID.Hex())
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(1), state.LikeCount)
	assert.Equal(t, 1, f.likes.count())
}

func TestLikeToggle_LibraryItems(t *testing.T) {
	f := newLikeFixture()
	ctx := context.Background()

	template := f.templates.add(&model.LibraryItem{Title: "T", Published: true})
	prompt := f.prompts.add(&model.LibraryItem{Title: "P", Published: true})

	state, err := f.uc.Toggle(ctx, user, model.TargetTemplate, template.ID.Hex())
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, int64(1), state.LikeCount)

	// The template id means nothing in the prompt collection.
	_, err = f.uc.Toggle(ctx, user, model.TargetPrompt, template.ID.Hex())
	require.ErrorIs(t, err, ErrLibraryItemNotFound)

	state, err = f.uc.Toggle(ctx, user, model.TargetPrompt, prompt.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.LikeCount)

	mine, err := f.uc.ListMine(ctx, user.UserID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	mine, err = f.uc.ListMine(ctx, user.UserID, model.TargetPrompt)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, prompt.ID, mine[0].TargetID)

	_, err = f.uc.ListMine(ctx, user.UserID, "course")
	require.ErrorIs(t, err, ErrUnknownTargetKind)
}

func TestLikeToggle_HiddenOrMissingTarget(t *testing.T) {
	f := newLikeFixture()
	ctx := context.Background()

	draft := f.formations.add(&model.Formation{Title: "D", Slug: "d"})

	_, err := f.uc.Toggle(ctx, user, model.TargetFormation, draft.ID.Hex())
	require.ErrorIs(t, err, ErrFormationNotFound)

	_, err = f.uc.Toggle(ctx, user, model.TargetFormation, bson.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrFormationNotFound)

	_, err = f.uc.Toggle(ctx, user, "course", bson.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrUnknownTargetKind)
}

func TestLikeToggle_ConcurrentUsersCountEachOnce(t *testing.T) {
	f := newLikeFixture()
	ctx := context.Background()

	formation := f.formations.add(&model.Formation{Title: "F", Slug: "f", Published: true})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			viewer := Viewer{UserID: bson.NewObjectID().Hex()}
			_, err := f.uc.Toggle(ctx, viewer, model.TargetFormation, formation.ID.Hex())
			assert.NoError(t, err, "toggle %d", i)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), f.formations.get(formation.ID).LikeCount)
	assert.Equal(t, 10, f.likes.count())
}
