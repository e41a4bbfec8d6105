package draft

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mockcatalogapi "github.com/stagecraft/draftpipe/internal/clients/catalogapi/mocks"
	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/preview"
	"github.com/stagecraft/draftpipe/internal/repositories/draftstore"
	"github.com/stagecraft/draftpipe/internal/services/media"
	"github.com/stagecraft/draftpipe/internal/uploader"
	mockuploader "github.com/stagecraft/draftpipe/internal/uploader/mocks"
)

type seqGen struct {
	prefix string
	n      int
}

func (g *seqGen) New() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

type sessionTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockAPI     *mockcatalogapi.MockClient
	mockUploads *mockuploader.MockClient
	previews    *preview.InMemoryAllocator
	kv          *draftstore.MemoryKV
	store       *draftstore.Store
	manager     *media.Manager
	session     *Session
	ctx         context.Context
}

// SetupTest runs before each test
func (s *sessionTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAPI = mockcatalogapi.NewMockClient(s.ctrl)
	s.mockUploads = mockuploader.NewMockClient(s.ctrl)
	s.previews = preview.NewInMemoryAllocator(&preview.InMemoryAllocatorConfig{
		IDGenerator: &seqGen{prefix: "handle"},
	})
	s.kv = draftstore.NewMemoryKV()
	s.store = draftstore.NewStore(&draftstore.StoreConfig{KV: s.kv})
	s.manager = media.NewManager(&media.ManagerConfig{
		Previews:    s.previews,
		IDGenerator: &seqGen{prefix: "item"},
	})
	s.session = NewSession(&SessionConfig{
		Store:    s.store,
		Resolver: media.NewResolver(&media.ResolverConfig{Uploader: s.mockUploads}),
		API:      s.mockAPI,
		Previews: s.previews,
		Media:    s.manager,
		IDGen:    &seqGen{prefix: "id"},
		Clock:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	s.ctx = context.Background()
}

// TearDownTest runs after each test
func (s *sessionTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *sessionTestSuite) sessionFor(entityID string) *Session {
	return NewSession(&SessionConfig{
		EntityID: entityID,
		Store:    s.store,
		Resolver: media.NewResolver(&media.ResolverConfig{Uploader: s.mockUploads}),
		API:      s.mockAPI,
		Previews: s.previews,
		Media:    s.manager,
	})
}

func (s *sessionTestSuite) fillValidDraft() {
	s.Require().NoError(s.session.SetField(s.ctx, FieldTitle, "Weathered Atlas"))
	s.Require().NoError(s.session.SetField(s.ctx, FieldSlug, "weathered-atlas"))
}

func imageFile(name string) *catalog.StagedFile {
	return &catalog.StagedFile{
		Name:        name,
		ContentType: "image/png",
		Size:        128,
		Data:        []byte("png-bytes"),
	}
}

func (s *sessionTestSuite) TestNewSessionStartsInvalid() {
	s.False(s.session.Valid())
	errs := s.session.FieldErrors()
	s.NotEmpty(errs[FieldTitle])
	s.NotEmpty(errs[FieldSlug])
}

func (s *sessionTestSuite) TestSetFieldAutosavesOnlyWhenValid() {
	s.Require().NoError(s.session.SetField(s.ctx, FieldTitle, "Weathered Atlas"))

	_, err := s.kv.Get(s.ctx, s.session.Key())
	s.True(apperrors.IsNotFound(err), "invalid draft must not be persisted")

	s.Require().NoError(s.session.SetField(s.ctx, FieldSlug, "weathered-atlas"))
	s.True(s.session.Valid())

	stored := s.store.Load(s.ctx, s.session.Key())
	s.Require().NotNil(stored)
	s.Equal("Weathered Atlas", stored.Title)
	s.Equal("weathered-atlas", stored.Slug)
}

func (s *sessionTestSuite) TestSetFieldRejectsTypeMismatch() {
	err := s.session.SetField(s.ctx, FieldPriceCents, "not-a-number")
	s.True(apperrors.IsInvalidArgument(err))
}

func (s *sessionTestSuite) TestSetFieldRejectsUnknownField() {
	err := s.session.SetField(s.ctx, "no_such_field", "value")
	s.True(apperrors.IsInvalidArgument(err))
}

func (s *sessionTestSuite) TestStageCoverFileReplacesPreviousHandle() {
	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("first.png")))
	s.Equal(1, s.previews.Live())

	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("second.png")))
	s.Equal(1, s.previews.Live(), "replaced cover handle must be released")

	s.True(s.session.Draft().Cover.IsLocal())
}

func (s *sessionTestSuite) TestStageCoverFileRejectsBadType() {
	err := s.session.StageCoverFile(s.ctx, &catalog.StagedFile{
		Name:        "movie.mp4",
		ContentType: "video/mp4",
		Size:        128,
	})
	s.True(apperrors.IsInvalidArgument(err))
	s.Equal(0, s.previews.Live())
}

func (s *sessionTestSuite) TestClearCoverReleasesHandle() {
	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("cover.png")))
	s.session.ClearCover(s.ctx)

	s.Equal(0, s.previews.Live())
	s.True(s.session.Draft().Cover.IsEmpty())
}

func (s *sessionTestSuite) TestSanitizedAutosaveDropsLocalCover() {
	s.fillValidDraft()
	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("cover.png")))

	stored := s.store.Load(s.ctx, s.session.Key())
	s.Require().NotNil(stored)
	s.True(stored.Cover.IsEmpty(), "local handles must not survive persistence")
}

func (s *sessionTestSuite) TestHydratePrefersStoredDraft() {
	saved := catalog.NewDraft()
	saved.Title = "Resumed Title"
	saved.Slug = "resumed"
	s.store.Save(s.ctx, catalog.DraftKey("item-42"), saved)

	sess := s.sessionFor("item-42")
	s.Require().NoError(sess.Hydrate(s.ctx))

	s.Equal("Resumed Title", sess.Draft().Title)
}

func (s *sessionTestSuite) TestHydrateFallsBackToRemoteEntity() {
	sess := s.sessionFor("item-7")
	s.mockAPI.EXPECT().GetByID(s.ctx, "item-7").Return(&catalog.Item{
		ID: "item-7",
		ItemPayload: catalog.ItemPayload{
			Title:    "Remote Title",
			Slug:     "remote",
			CoverURL: "https://cdn.example.com/cover.png",
			Media: []catalog.MediaPayload{
				{Kind: catalog.KindImage, URL: "https://cdn.example.com/a.png", SortOrder: 1},
			},
		},
	}, nil)

	s.Require().NoError(sess.Hydrate(s.ctx))

	d := sess.Draft()
	s.Equal("Remote Title", d.Title)
	s.Equal("https://cdn.example.com/cover.png", d.Cover.URL())
	s.Require().Len(d.Gallery, 1)
	s.Equal("https://cdn.example.com/a.png", d.Gallery[0].URL.URL())
}

func (s *sessionTestSuite) TestHydrateSurfacesFetchFailure() {
	sess := s.sessionFor("item-9")
	s.mockAPI.EXPECT().GetByID(s.ctx, "item-9").Return(nil, fmt.Errorf("boom"))

	err := sess.Hydrate(s.ctx)
	s.Require().Error(err)
	s.True(apperrors.IsAPIFailure(err))
}

func (s *sessionTestSuite) TestLoadEntityIgnoresStoredDraft() {
	saved := catalog.NewDraft()
	saved.Title = "Stale Local Draft"
	s.store.Save(s.ctx, s.session.Key(), saved)

	s.mockAPI.EXPECT().GetByID(s.ctx, "item-8").Return(&catalog.Item{
		ID:          "item-8",
		ItemPayload: catalog.ItemPayload{Title: "Backend Truth", Slug: "backend-truth"},
	}, nil)

	s.Require().NoError(s.session.LoadEntity(s.ctx, "item-8"))
	s.Equal("Backend Truth", s.session.Draft().Title)
}

func (s *sessionTestSuite) TestHydrateNewEntityLeavesDraftEmpty() {
	s.Require().NoError(s.session.Hydrate(s.ctx))
	s.Equal("", s.session.Draft().Title)
}

func (s *sessionTestSuite) TestAttachmentsRoundTrip() {
	s.fillValidDraft()
	s.session.AddAttachment(s.ctx, catalog.AttachmentDescriptor{
		Name: "manual.pdf",
		Path: "attachments/manual.pdf",
		Size: 2048,
	})

	d := s.session.Draft()
	s.Require().Len(d.Attachments, 1)

	stored := s.store.Load(s.ctx, s.session.Key())
	s.Require().NotNil(stored)
	s.Len(stored.Attachments, 1)

	s.Require().NoError(s.session.UpdateAttachment(s.ctx, 0, catalog.AttachmentDescriptor{
		Name: "manual-v2.pdf",
		Path: "attachments/manual-v2.pdf",
		Size: 4096,
	}))
	s.Equal("manual-v2.pdf", s.session.Draft().Attachments[0].Name)

	s.Require().NoError(s.session.RemoveAttachment(s.ctx, 0))
	s.Empty(s.session.Draft().Attachments)
}

func (s *sessionTestSuite) TestCheckpointPersistsGalleryChanges() {
	s.fillValidDraft()

	item := s.manager.AddItem(catalog.KindImage)
	url := "https://cdn.example.com/existing.png"
	s.Require().NoError(s.manager.UpdateItem(item.ID, media.ItemUpdate{URL: &url}))
	s.session.Checkpoint(s.ctx)

	stored := s.store.Load(s.ctx, s.session.Key())
	s.Require().NotNil(stored)
	s.Require().Len(stored.Gallery, 1)
	s.Equal(url, stored.Gallery[0].URL.URL())
}

func (s *sessionTestSuite) TestRemoveAttachmentOutOfRange() {
	err := s.session.RemoveAttachment(s.ctx, 3)
	s.True(apperrors.IsInvalidArgument(err))
}

func (s *sessionTestSuite) TestPublishBlockedByValidation() {
	result := s.session.Publish(s.ctx)

	s.Equal(SubmitInvalid, result.Status)
	s.NotEmpty(result.FieldErrors[FieldTitle])
	s.NotEmpty(result.FieldErrors[FieldSlug])
}

func (s *sessionTestSuite) TestPublishBlockedByVideoMissingLink() {
	s.fillValidDraft()
	item := s.manager.AddItem(catalog.KindVideo)
	s.Require().NoError(s.manager.StageLocalFile(item.ID, imageFile("thumb.png"), media.SlotThumbnail))

	result := s.session.Publish(s.ctx)

	s.Equal(SubmitInvalid, result.Status)
	s.NotEmpty(result.FieldErrors[FieldGallery])
}

func (s *sessionTestSuite) TestPublishUploadsStagedFilesThenCreates() {
	s.fillValidDraft()
	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("cover.png")))

	item := s.manager.AddItem(catalog.KindImage)
	s.Require().NoError(s.manager.StageLocalFile(item.ID, imageFile("gallery.png"), media.SlotPrimary))

	s.mockUploads.EXPECT().Upload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, file *catalog.StagedFile) (*uploader.Result, error) {
			return &uploader.Result{URL: "https://cdn.example.com/" + file.Name}, nil
		}).Times(2)

	var sent *catalog.ItemPayload
	s.mockAPI.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payload *catalog.ItemPayload) (*catalog.Item, error) {
			sent = payload
			return &catalog.Item{ID: "item-1", ItemPayload: *payload}, nil
		})

	result := s.session.Publish(s.ctx)

	s.Require().Equal(SubmitSuccess, result.Status)
	s.Require().NotNil(result.Item)
	s.Equal("item-1", result.Item.ID)

	s.Require().NotNil(sent)
	s.Equal("https://cdn.example.com/cover.png", sent.CoverURL)
	s.Require().Len(sent.Media, 1)
	s.Equal("https://cdn.example.com/gallery.png", sent.Media[0].URL)
	s.Equal(1, sent.Media[0].SortOrder)

	// session state after success: resolved refs, no handles, no stored draft
	s.Equal(0, s.previews.Live())
	s.True(s.session.Draft().Cover.IsRemote())
	s.Nil(s.store.Load(s.ctx, s.session.Key()))
}

func (s *sessionTestSuite) TestPublishUploadFailureLeavesDraftIntact() {
	s.fillValidDraft()
	item := s.manager.AddItem(catalog.KindImage)
	s.Require().NoError(s.manager.StageLocalFile(item.ID, imageFile("gallery.png"), media.SlotPrimary))

	s.mockUploads.EXPECT().Upload(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("bucket unavailable"))

	result := s.session.Publish(s.ctx)

	s.Equal(SubmitFailed, result.Status)
	s.Equal(apperrors.CodeUploadFailed, result.ErrorCode)
	s.NotEmpty(result.Message)

	// staged state and snapshot survive for a retry
	s.Equal(1, s.previews.Live())
	s.NotNil(s.store.Load(s.ctx, s.session.Key()))
}

func (s *sessionTestSuite) TestPublishAPIFailure() {
	s.fillValidDraft()

	s.mockAPI.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("503 service unavailable"))

	result := s.session.Publish(s.ctx)

	s.Equal(SubmitFailed, result.Status)
	s.Equal(apperrors.CodeAPIFailure, result.ErrorCode)
	s.NotNil(s.store.Load(s.ctx, s.session.Key()))
}

func (s *sessionTestSuite) TestUpdateRequiresID() {
	result := s.session.Update(s.ctx, "")

	s.Equal(SubmitFailed, result.Status)
	s.Equal(apperrors.CodeInvalidArgument, result.ErrorCode)
}

func (s *sessionTestSuite) TestUpdateCallsAPIWithID() {
	s.fillValidDraft()

	s.mockAPI.EXPECT().Update(gomock.Any(), "item-3", gomock.Any()).
		Return(&catalog.Item{ID: "item-3"}, nil)

	result := s.session.Update(s.ctx, "item-3")

	s.Equal(SubmitSuccess, result.Status)
	s.Equal("item-3", result.Item.ID)
}

func (s *sessionTestSuite) TestCloseReleasesEveryHandle() {
	s.Require().NoError(s.session.StageCoverFile(s.ctx, imageFile("cover.png")))
	item := s.manager.AddItem(catalog.KindImage)
	s.Require().NoError(s.manager.StageLocalFile(item.ID, imageFile("gallery.png"), media.SlotPrimary))

	s.session.Close()

	s.Equal(0, s.previews.Live())
}

func (s *sessionTestSuite) TestSetDraftReplacesGalleryAndReleasesHandles() {
	item := s.manager.AddItem(catalog.KindImage)
	s.Require().NoError(s.manager.StageLocalFile(item.ID, imageFile("old.png"), media.SlotPrimary))

	incoming := catalog.NewDraft()
	incoming.Title = "Incoming"
	incoming.Gallery = []*catalog.StagedMediaItem{
		{ID: "g-1", Kind: catalog.KindImage, URL: catalog.RemoteRef("https://cdn.example.com/kept.png")},
	}
	s.session.SetDraft(incoming)

	s.Equal(0, s.previews.Live())
	d := s.session.Draft()
	s.Equal("Incoming", d.Title)
	s.Require().Len(d.Gallery, 1)
	s.Equal("https://cdn.example.com/kept.png", d.Gallery[0].URL.URL())
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(sessionTestSuite))
}
