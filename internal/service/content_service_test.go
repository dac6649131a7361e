package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/apperr"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
)

// businessRepoSpy counts tag writes so tests can assert when no persistence
// happened at all.
type businessRepoSpy struct {
	repository.BusinessRepository
	tagUpdates int
}

func (s *businessRepoSpy) UpdateTags(ctx context.Context, id primitive.ObjectID, tags string) error {
	s.tagUpdates++
	return s.BusinessRepository.UpdateTags(ctx, id, tags)
}

type contentFixture struct {
	svc        ContentService
	contents   *repository.MemoryContentRepo
	businesses *businessRepoSpy
	users      *repository.MemoryUserRepo
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	businesses := &businessRepoSpy{BusinessRepository: repository.NewMemoryBusinessRepo()}
	users := repository.NewMemoryUserRepo()
	contents := repository.NewMemoryContentRepo()
	svc := NewContentService(contents, businesses, users,
		NewWebhookNotifier("", zap.NewNop()), zap.NewNop())
	return &contentFixture{svc: svc, contents: contents, businesses: businesses, users: users}
}

func (f *contentFixture) addUser(t *testing.T, username string, roles ...string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Roles: roles}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *contentFixture) addBusiness(t *testing.T, b *domain.Business) *domain.Business {
	t.Helper()
	require.NoError(t, f.businesses.Create(context.Background(), b))
	return b
}

func TestCreateContent_BusinessNotFound(t *testing.T) {
	f := newContentFixture(t)
	actor := f.addUser(t, "writer", domain.RoleContentWriter)

	_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor:       actor,
		Business:    primitive.NewObjectID().Hex(),
		ContentType: "poster",
		Date:        "03/10/2026",
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestCreateContent_DefaultsPrimaryAssignees(t *testing.T) {
	f := newContentFixture(t)
	actor := f.addUser(t, "writer", domain.RoleContentWriter)
	cdA := f.addUser(t, "designer-a", domain.RoleContentDesigner)
	cdB := f.addUser(t, "designer-b", domain.RoleContentDesigner)
	ve := f.addUser(t, "editor", domain.RoleVideoEditor)

	biz := f.addBusiness(t, &domain.Business{
		BusinessName: "Acme Coffee",
		AssignedCD:   []primitive.ObjectID{cdA.ID, cdB.ID},
		AssignedVE:   []primitive.ObjectID{ve.ID},
	})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor:       actor,
		Business:    biz.ID.Hex(),
		ContentType: "both",
		Date:        "03/10/2026",
	})

	require.NoError(t, err)
	require.NotNil(t, view.AssignedCD)
	assert.Equal(t, cdA.ID, *view.AssignedCD, "first designer in the list becomes the assignee")
	require.NotNil(t, view.AssignedVE)
	assert.Equal(t, ve.ID, *view.AssignedVE)
	assert.Nil(t, view.AssignedCW, "no writer assigned on the business")
	assert.Equal(t, actor.ID, view.AddedBy)

	require.NotNil(t, view.BusinessRef)
	assert.Equal(t, "Acme Coffee", view.BusinessRef.BusinessName)
	require.NotNil(t, view.AssignedCDRef)
	assert.Equal(t, "designer-a", view.AssignedCDRef.Username)
	require.NotNil(t, view.AddedByRef)
	assert.Equal(t, "writer", view.AddedByRef.Username)
}

func TestCreateContent_InvalidFields(t *testing.T) {
	f := newContentFixture(t)
	actor := f.addUser(t, "writer", domain.RoleContentWriter)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: actor, Business: biz.ID.Hex(), ContentType: "podcast", Date: "03/10/2026",
	})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	_, err = f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: actor, Business: biz.ID.Hex(), ContentType: "poster", Date: "2026-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	_, err = f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: actor, Business: "not-an-id", ContentType: "poster", Date: "03/10/2026",
	})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestListContents_TodayOnlyOverridesDate(t *testing.T) {
	f := newContentFixture(t)
	actor := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	today := domain.Today(time.Now())
	for _, date := range []string{today, "01/01/2020", "01/01/2020"} {
		_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
			Actor: actor, Business: biz.ID.Hex(), ContentType: "poster", Date: date,
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{
		Actor:     actor,
		Date:      "01/01/2020",
		TodayOnly: true,
	})

	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Total)
	assert.Equal(t, today, resp.Items[0].Date)
}

func TestListContents_DesignerOverlayOverridesCallerType(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	designer := f.addUser(t, "designer", domain.RoleContentDesigner)

	biz := f.addBusiness(t, &domain.Business{
		BusinessName: "Acme",
		AssignedCD:   []primitive.ObjectID{designer.ID},
	})
	other := f.addBusiness(t, &domain.Business{BusinessName: "Other"})

	for _, tc := range []struct {
		biz string
		ct  string
	}{
		{biz.ID.Hex(), "poster"},
		{biz.ID.Hex(), "both"},
		{biz.ID.Hex(), "video"},
		{other.ID.Hex(), "poster"},
	} {
		_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
			Actor: admin, Business: tc.biz, ContentType: tc.ct, Date: "03/10/2026",
		})
		require.NoError(t, err)
	}

	// The designer asks for videos; the role overlay forces assignedCD=self
	// and poster/both anyway.
	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{
		Actor:       designer,
		ContentType: "video",
	})

	require.NoError(t, err)
	require.EqualValues(t, 2, resp.Total)
	for _, item := range resp.Items {
		require.NotNil(t, item.AssignedCD)
		assert.Equal(t, designer.ID, *item.AssignedCD)
		assert.Contains(t, []domain.ContentType{domain.ContentTypePoster, domain.ContentTypeBoth}, item.ContentType)
	}
}

func TestListContents_VideoEditorOverlay(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	editor := f.addUser(t, "editor", domain.RoleVideoEditor)

	biz := f.addBusiness(t, &domain.Business{
		BusinessName: "Acme",
		AssignedVE:   []primitive.ObjectID{editor.ID},
	})

	for _, ct := range []string{"poster", "video", "both"} {
		_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
			Actor: admin, Business: biz.ID.Hex(), ContentType: ct, Date: "03/10/2026",
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{Actor: editor})

	require.NoError(t, err)
	require.EqualValues(t, 2, resp.Total)
	for _, item := range resp.Items {
		assert.Contains(t, []domain.ContentType{domain.ContentTypeVideo, domain.ContentTypeBoth}, item.ContentType)
	}
}

func TestListContents_RolelessUserSeesOwnOnly(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	intern := f.addUser(t, "intern")
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)
	mine, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: intern, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{Actor: intern})

	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Total)
	assert.Equal(t, mine.ID, resp.Items[0].ID)
}

func TestListContents_Pagination(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	for i := 0; i < 45; i++ {
		_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
			Actor:       admin,
			Business:    biz.ID.Hex(),
			ContentType: "poster",
			Date:        fmt.Sprintf("03/%02d/2026", i%28+1),
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{
		Actor: admin, Page: 3, Limit: 20,
	})

	require.NoError(t, err)
	assert.EqualValues(t, 45, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Len(t, resp.Items, 5)
}

func TestListContents_StatusAbsentMeansAll(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	for _, status := range []bool{true, false, true} {
		_, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
			Actor: admin, Business: biz.ID.Hex(), ContentType: "poster",
			Date: "03/10/2026", Status: status,
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListContents(context.Background(), ListContentsRequest{Actor: admin})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)

	done := true
	resp, err = f.svc.ListContents(context.Background(), ListContentsRequest{Actor: admin, Status: &done})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)
}

func TestGetContent_NotFound(t *testing.T) {
	f := newContentFixture(t)
	actor := f.addUser(t, "admin", domain.RoleAdmin)

	_, err := f.svc.GetContent(context.Background(), GetContentRequest{
		Actor: actor, ID: primitive.NewObjectID().Hex(),
	})

	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestUpdateContent_AssignmentAuthorization(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	outsider := f.addUser(t, "outsider", domain.RoleContentDesigner)

	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})
	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: outsider, ID: view.ID.Hex(), Payload: map[string]any{"status": true},
	})
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))

	// The same user added to the writer list may mutate.
	stored, err := f.businesses.GetByID(context.Background(), biz.ID)
	require.NoError(t, err)
	stored.AssignedCW = []primitive.ObjectID{outsider.ID}
	require.NoError(t, f.businesses.Create(context.Background(), stored))

	updated, err := f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: outsider, ID: view.ID.Hex(), Payload: map[string]any{"status": true},
	})
	require.NoError(t, err)
	assert.True(t, updated.Status)
}

func TestUpdateContent_SyncsNewHashtags(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme", Tags: "#food #local"})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: admin, ID: view.ID.Hex(), Payload: map[string]any{"tags": "#Food #NEW"},
	})
	require.NoError(t, err)

	stored, err := f.businesses.GetByID(context.Background(), biz.ID)
	require.NoError(t, err)
	assert.Equal(t, "#food #local #new", stored.Tags)
	assert.Equal(t, 1, f.businesses.tagUpdates)
}

func TestUpdateContent_NoHashtagsNoPersistence(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme", Tags: "#food"})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: admin, ID: view.ID.Hex(), Payload: map[string]any{"tags": "plain words only"},
	})
	require.NoError(t, err)

	stored, err := f.businesses.GetByID(context.Background(), biz.ID)
	require.NoError(t, err)
	assert.Equal(t, "#food", stored.Tags)
	assert.Zero(t, f.businesses.tagUpdates, "no tag write when nothing new was found")
}

func TestUpdateContent_MissingBusinessSkipsSyncSilently(t *testing.T) {
	f := newContentFixture(t)
	superAdmin := f.addUser(t, "root", domain.RoleSuperAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: superAdmin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	// Retarget the content at a business that does not exist; the update
	// still succeeds and the sync is skipped.
	ghost := primitive.NewObjectID()
	updated, err := f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: superAdmin,
		ID:    view.ID.Hex(),
		Payload: map[string]any{
			"business": ghost.Hex(),
			"tags":     "#orphan",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ghost, updated.Business)
	assert.Zero(t, f.businesses.tagUpdates)
}

func TestDeleteContent_BusinessGoneFailsNotFound(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	writer := f.addUser(t, "writer", domain.RoleContentWriter)

	biz := f.addBusiness(t, &domain.Business{
		BusinessName: "Acme",
		AssignedCW:   []primitive.ObjectID{writer.ID},
	})
	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	// Simulate the business vanishing under the content.
	ghost := primitive.NewObjectID()
	_, err = f.svc.UpdateContent(context.Background(), UpdateContentRequest{
		Actor: admin, ID: view.ID.Hex(), Payload: map[string]any{"business": ghost.Hex()},
	})
	require.NoError(t, err)

	_, err = f.svc.DeleteContent(context.Background(), DeleteContentRequest{
		Actor: writer, ID: view.ID.Hex(),
	})
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))

	// Admins bypass the business lookup and can still delete.
	_, err = f.svc.DeleteContent(context.Background(), DeleteContentRequest{
		Actor: admin, ID: view.ID.Hex(),
	})
	require.NoError(t, err)
}

func TestDeleteContent_ForbiddenForUnassigned(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	outsider := f.addUser(t, "outsider", domain.RoleVideoEditor)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "video", Date: "03/10/2026",
	})
	require.NoError(t, err)

	_, err = f.svc.DeleteContent(context.Background(), DeleteContentRequest{
		Actor: outsider, ID: view.ID.Hex(),
	})
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))
}

func TestDeleteContent_ReturnsDeletedView(t *testing.T) {
	f := newContentFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin)
	biz := f.addBusiness(t, &domain.Business{BusinessName: "Acme"})

	view, err := f.svc.CreateContent(context.Background(), CreateContentRequest{
		Actor: admin, Business: biz.ID.Hex(), ContentType: "poster", Date: "03/10/2026",
	})
	require.NoError(t, err)

	deleted, err := f.svc.DeleteContent(context.Background(), DeleteContentRequest{
		Actor: admin, ID: view.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, view.ID, deleted.ID)

	_, err = f.svc.GetContent(context.Background(), GetContentRequest{Actor: admin, ID: view.ID.Hex()})
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}
