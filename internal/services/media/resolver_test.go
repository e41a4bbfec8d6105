package media_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/services/media"
	"github.com/stagecraft/draftpipe/internal/uploader"
	mockuploader "github.com/stagecraft/draftpipe/internal/uploader/mocks"
)

type ResolverTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	uploads  *mockuploader.MockClient
	resolver *media.Resolver
	ctx      context.Context
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uploads = mockuploader.NewMockClient(s.ctrl)
	s.resolver = media.NewResolver(&media.ResolverConfig{Uploader: s.uploads})
	s.ctx = context.Background()
}

func (s *ResolverTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func remoteImage(id, url string) *catalog.StagedMediaItem {
	return &catalog.StagedMediaItem{
		ID:           id,
		Kind:         catalog.KindImage,
		URL:          catalog.RemoteRef(url),
		ThumbnailURL: catalog.RemoteRef(url),
	}
}

func stagedImage(id, handle string, file *catalog.StagedFile) *catalog.StagedMediaItem {
	ref := catalog.LocalRef(catalog.LocalScheme + handle)
	return &catalog.StagedMediaItem{
		ID:           id,
		Kind:         catalog.KindImage,
		URL:          ref,
		ThumbnailURL: ref, // mirrored default
		PendingFile:  file,
	}
}

func (s *ResolverTestSuite) TestResolve_RemoteItemsPassThroughWithoutUploads() {
	items := []*catalog.StagedMediaItem{
		remoteImage("a", "https://cdn.example.com/1.jpg"),
		remoteImage("b", "https://cdn.example.com/2.jpg"),
	}
	items[0].PendingFile = &catalog.StagedFile{Name: "stale.jpg"} // leftover transient

	out, err := s.resolver.Resolve(s.ctx, items)
	s.Require().NoError(err)

	s.Len(out, 2)
	s.Equal("https://cdn.example.com/1.jpg", out[0].URL.URL())
	s.Nil(out[0].PendingFile)
	s.Equal(1, out[0].SortOrder)
	s.Equal(2, out[1].SortOrder)

	// input untouched
	s.NotNil(items[0].PendingFile)
}

func (s *ResolverTestSuite) TestResolve_UploadsOnlyStagedItems() {
	fileB := &catalog.StagedFile{Name: "b.jpg", ContentType: "image/jpeg"}
	fileD := &catalog.StagedFile{Name: "d.jpg", ContentType: "image/jpeg"}

	items := []*catalog.StagedMediaItem{
		remoteImage("a", "https://cdn.example.com/a.jpg"),
		stagedImage("b", "hb", fileB),
		remoteImage("c", "https://cdn.example.com/c.jpg"),
		stagedImage("d", "hd", fileD),
	}

	s.uploads.EXPECT().Upload(gomock.Any(), fileB).
		Return(&uploader.Result{URL: "https://cdn.example.com/b.jpg"}, nil)
	s.uploads.EXPECT().Upload(gomock.Any(), fileD).
		Return(&uploader.Result{URL: "https://cdn.example.com/d.jpg"}, nil)

	out, err := s.resolver.Resolve(s.ctx, items)
	s.Require().NoError(err)

	s.Require().Len(out, 4)
	s.Equal([]string{"a", "b", "c", "d"}, []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID})
	s.Equal("https://cdn.example.com/b.jpg", out[1].URL.URL())
	// mirrored thumbnail follows the uploaded primary
	s.Equal("https://cdn.example.com/b.jpg", out[1].ThumbnailURL.URL())
	for idx, item := range out {
		s.Equal(idx+1, item.SortOrder)
		s.Nil(item.PendingFile)
		s.Nil(item.PendingThumbFile)
		s.False(item.URL.IsLocal())
		s.False(item.ThumbnailURL.IsLocal())
	}
}

func (s *ResolverTestSuite) TestResolve_BackendThumbnailPreferredForMirroredDefault() {
	file := &catalog.StagedFile{Name: "a.jpg", ContentType: "image/jpeg"}
	items := []*catalog.StagedMediaItem{stagedImage("a", "ha", file)}

	s.uploads.EXPECT().Upload(gomock.Any(), file).
		Return(&uploader.Result{
			URL:          "https://cdn.example.com/a.jpg",
			ThumbnailURL: "https://cdn.example.com/a_thumb.jpg",
		}, nil)

	out, err := s.resolver.Resolve(s.ctx, items)
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/a_thumb.jpg", out[0].ThumbnailURL.URL())
}

func (s *ResolverTestSuite) TestResolve_SeparatelyStagedThumbnailKept() {
	primary := &catalog.StagedFile{Name: "a.jpg", ContentType: "image/jpeg"}
	thumb := &catalog.StagedFile{Name: "t.jpg", ContentType: "image/jpeg"}

	item := &catalog.StagedMediaItem{
		ID:               "a",
		Kind:             catalog.KindImage,
		URL:              catalog.LocalRef(catalog.LocalScheme + "h1"),
		ThumbnailURL:     catalog.LocalRef(catalog.LocalScheme + "h2"),
		PendingFile:      primary,
		PendingThumbFile: thumb,
	}

	s.uploads.EXPECT().Upload(gomock.Any(), primary).
		Return(&uploader.Result{URL: "https://cdn.example.com/a.jpg"}, nil)
	s.uploads.EXPECT().Upload(gomock.Any(), thumb).
		Return(&uploader.Result{URL: "https://cdn.example.com/t.jpg"}, nil)

	out, err := s.resolver.Resolve(s.ctx, []*catalog.StagedMediaItem{item})
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/a.jpg", out[0].URL.URL())
	s.Equal("https://cdn.example.com/t.jpg", out[0].ThumbnailURL.URL())
}

func (s *ResolverTestSuite) TestResolve_ThumbnailOnlyUpload() {
	thumb := &catalog.StagedFile{Name: "t.jpg", ContentType: "image/jpeg"}
	item := &catalog.StagedMediaItem{
		ID:               "a",
		Kind:             catalog.KindImage,
		URL:              catalog.RemoteRef("https://cdn.example.com/a.jpg"),
		ThumbnailURL:     catalog.LocalRef(catalog.LocalScheme + "h2"),
		PendingThumbFile: thumb,
	}

	s.uploads.EXPECT().Upload(gomock.Any(), thumb).
		Return(&uploader.Result{URL: "https://cdn.example.com/t.jpg"}, nil)

	out, err := s.resolver.Resolve(s.ctx, []*catalog.StagedMediaItem{item})
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/a.jpg", out[0].URL.URL())
	s.Equal("https://cdn.example.com/t.jpg", out[0].ThumbnailURL.URL())
}

func (s *ResolverTestSuite) TestResolve_HandleWithoutFileFailsBeforeAnyUpload() {
	items := []*catalog.StagedMediaItem{
		{
			ID:      "a",
			Kind:    catalog.KindImage,
			Caption: "Broken one",
			URL:     catalog.LocalRef(catalog.LocalScheme + "h1"),
			// no PendingFile: contract violation
		},
		stagedImage("b", "hb", &catalog.StagedFile{Name: "b.jpg"}),
	}

	// no Upload expectation at all: the violation is detected first

	_, err := s.resolver.Resolve(s.ctx, items)
	s.Require().Error(err)
	s.True(apperrors.IsStagingContract(err))
	s.Contains(err.Error(), "Broken one")
}

func (s *ResolverTestSuite) TestResolve_VideoWithLocalPrimaryFails() {
	items := []*catalog.StagedMediaItem{
		{
			ID:      "v",
			Kind:    catalog.KindVideo,
			Caption: "Launch teaser",
			URL:     catalog.LocalRef(catalog.LocalScheme + "h1"),
		},
	}

	_, err := s.resolver.Resolve(s.ctx, items)
	s.Require().Error(err)
	s.True(apperrors.IsStagingContract(err))
	s.Contains(err.Error(), "Launch teaser")
}

func (s *ResolverTestSuite) TestResolve_VideoThumbnailUploaded() {
	thumb := &catalog.StagedFile{Name: "t.jpg", ContentType: "image/jpeg"}
	items := []*catalog.StagedMediaItem{
		{
			ID:               "v",
			Kind:             catalog.KindVideo,
			URL:              catalog.RemoteRef("https://videos.example.com/v/9"),
			ThumbnailURL:     catalog.LocalRef(catalog.LocalScheme + "h1"),
			PendingThumbFile: thumb,
			Duration:         "01:30",
		},
	}

	s.uploads.EXPECT().Upload(gomock.Any(), thumb).
		Return(&uploader.Result{URL: "https://cdn.example.com/t.jpg"}, nil)

	out, err := s.resolver.Resolve(s.ctx, items)
	s.Require().NoError(err)
	s.Equal("https://videos.example.com/v/9", out[0].URL.URL())
	s.Equal("https://cdn.example.com/t.jpg", out[0].ThumbnailURL.URL())
	s.Equal("01:30", out[0].Duration)
}

func (s *ResolverTestSuite) TestResolve_UploadFailureAbortsAndNamesItem() {
	fileA := &catalog.StagedFile{Name: "a.jpg", ContentType: "image/jpeg"}
	items := []*catalog.StagedMediaItem{
		func() *catalog.StagedMediaItem {
			i := stagedImage("a", "ha", fileA)
			i.Caption = "Beach panorama"
			return i
		}(),
		stagedImage("b", "hb", &catalog.StagedFile{Name: "b.jpg"}),
	}

	s.uploads.EXPECT().Upload(gomock.Any(), fileA).
		Return(nil, apperrors.New(apperrors.CodeUnknown, "storage rejected the file"))
	// item b must not be attempted

	_, err := s.resolver.Resolve(s.ctx, items)
	s.Require().Error(err)
	s.True(apperrors.IsUploadFailed(err))
	s.Contains(err.Error(), "Beach panorama")
	s.Equal("Beach panorama", apperrors.GetMeta(err)["item_label"])
}

func (s *ResolverTestSuite) TestResolve_EmptyGallery() {
	out, err := s.resolver.Resolve(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *ResolverTestSuite) TestResolveParallel_PreservesInputOrder() {
	resolver := media.NewResolver(&media.ResolverConfig{
		Uploader:    s.uploads,
		Parallelism: 3,
	})

	var items []*catalog.StagedMediaItem
	for _, name := range []string{"1", "2", "3", "4", "5"} {
		file := &catalog.StagedFile{Name: name + ".jpg", ContentType: "image/jpeg"}
		items = append(items, stagedImage(name, "h"+name, file))
		s.uploads.EXPECT().Upload(gomock.Any(), file).
			Return(&uploader.Result{URL: "https://cdn.example.com/" + name + ".jpg"}, nil)
	}

	out, err := resolver.Resolve(s.ctx, items)
	s.Require().NoError(err)
	s.Require().Len(out, 5)
	for idx, name := range []string{"1", "2", "3", "4", "5"} {
		s.Equal(name, out[idx].ID)
		s.Equal("https://cdn.example.com/"+name+".jpg", out[idx].URL.URL())
		s.Equal(idx+1, out[idx].SortOrder)
	}
}

func (s *ResolverTestSuite) TestResolveCover() {
	s.Run("remote cover passes through", func() {
		cover := catalog.RemoteRef("https://cdn.example.com/cover.jpg")
		resolved, err := s.resolver.ResolveCover(s.ctx, cover, nil)
		s.Require().NoError(err)
		s.Equal(cover, resolved)
	})

	s.Run("empty cover passes through", func() {
		resolved, err := s.resolver.ResolveCover(s.ctx, catalog.EmptyRef(), nil)
		s.Require().NoError(err)
		s.True(resolved.IsEmpty())
	})

	s.Run("staged cover is uploaded", func() {
		file := &catalog.StagedFile{Name: "cover.jpg", ContentType: "image/jpeg"}
		s.uploads.EXPECT().Upload(gomock.Any(), file).
			Return(&uploader.Result{URL: "https://cdn.example.com/cover.jpg"}, nil)

		resolved, err := s.resolver.ResolveCover(s.ctx, catalog.LocalRef(catalog.LocalScheme+"hc"), file)
		s.Require().NoError(err)
		s.Equal("https://cdn.example.com/cover.jpg", resolved.URL())
	})

	s.Run("handle without file is a contract violation", func() {
		_, err := s.resolver.ResolveCover(s.ctx, catalog.LocalRef(catalog.LocalScheme+"hc"), nil)
		s.True(apperrors.IsStagingContract(err))
	})
}
