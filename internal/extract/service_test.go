package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// fakeStream replays a fixed item sequence, optionally failing mid-stream.
type fakeStream struct {
	items   []StreamItem
	pos     int
	failAt  int
	failErr error
}

func (f *fakeStream) Next(_ context.Context) (*StreamItem, error) {
	if f.failErr != nil && f.pos == f.failAt {
		return nil, f.failErr
	}
	if f.pos >= len(f.items) {
		return nil, io.EOF
	}
	item := f.items[f.pos]
	f.pos++
	return &item, nil
}

type fakeExtractor struct {
	user       *RawUser
	lookupErr  error
	initErr    error
	stream     *fakeStream
	cursor     string
	byScreen   bool
	byRestID   bool
	restIDSeen string
}

func (f *fakeExtractor) Initialize(context.Context) error { return f.initErr }

func (f *fakeExtractor) UserByScreenName(_ context.Context, name string) (*RawUser, error) {
	f.byScreen = true
	return f.user, f.lookupErr
}

func (f *fakeExtractor) UserByRestID(_ context.Context, id string) (*RawUser, error) {
	f.byRestID = true
	f.restIDSeen = id
	return f.user, f.lookupErr
}

func (f *fakeExtractor) TransformUser(u *RawUser) UserData {
	return UserData{
		Name:           u.Name,
		Nick:           u.ScreenName,
		Date:           u.CreatedAt,
		FollowersCount: u.FollowersCount,
		FriendsCount:   u.FriendsCount,
		StatusesCount:  u.StatusesCount,
		ProfileImage:   u.ProfileImageURL,
	}
}

func (f *fakeExtractor) Stream() Stream { return f.stream }
func (f *fakeExtractor) Cursor() string { return f.cursor }

type fakePlatform struct {
	ex      *fakeExtractor
	err     error
	gotKind TimelineKind
	gotURL  string
	gotCfg  Config
}

func (p *fakePlatform) Timeline(kind TimelineKind, url string, cfg Config) (Extractor, error) {
	p.gotKind, p.gotURL, p.gotCfg = kind, url, cfg
	if p.err != nil {
		return nil, p.err
	}
	return p.ex, nil
}

func (p *fakePlatform) Search(url string, cfg Config) (Extractor, error) {
	p.gotURL, p.gotCfg = url, cfg
	if p.err != nil {
		return nil, p.err
	}
	return p.ex, nil
}

var testUser = &RawUser{
	ID:              "12345",
	ScreenName:      "example",
	Name:            "Example User",
	CreatedAt:       time.Date(2020, 1, 2, 15, 4, 5, 0, time.UTC),
	FollowersCount:  100,
	FriendsCount:    50,
	StatusesCount:   200,
	ProfileImageURL: "https://pbs.twimg.com/profile_images/1/photo.jpg",
}

func photoItem(id int64, user *UserData) StreamItem {
	return StreamItem{
		Kind: ItemURL,
		URL:  fmt.Sprintf("https://pbs.twimg.com/media/photo%d.jpg?name=orig", id),
		Tweet: TweetData{
			TweetID: id,
			Date:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			Type:    "photo",
			User:    user,
		},
	}
}

func videoItem(id int64, typ string, user *UserData) StreamItem {
	return StreamItem{
		Kind: ItemURL,
		URL:  fmt.Sprintf("https://video.twimg.com/ext_tw_video/%d/pu/vid/1280x720/v.mp4", id),
		Tweet: TweetData{
			TweetID: id,
			Date:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			Type:    typ,
			User:    user,
		},
	}
}

func embeddedUser() *UserData {
	return &UserData{
		Name:           "Example User",
		Nick:           "example",
		Date:           time.Date(2020, 1, 2, 15, 4, 5, 0, time.UTC),
		FollowersCount: 100,
		FriendsCount:   50,
		StatusesCount:  200,
		ProfileImage:   "https://pbs.twimg.com/profile_images/1/photo.jpg",
	}
}

func newFakePlatform(items []StreamItem) *fakePlatform {
	return &fakePlatform{ex: &fakeExtractor{
		user:   testUser,
		stream: &fakeStream{items: items},
	}}
}

func TestTimelineUnbounded(t *testing.T) {
	user := embeddedUser()
	items := []StreamItem{
		photoItem(1, user),
		photoItem(2, nil),
		photoItem(3, nil),
		photoItem(4, nil),
	}
	retweet := photoItem(5, nil)
	retweet.Tweet.RetweetID = 42
	items = append(items, retweet)

	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username:  "example",
		AuthToken: "token",
		MediaType: MediaAll,
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	result := resp.Result
	if len(result.Timeline) != 5 {
		t.Fatalf("timeline length = %d, want 5", len(result.Timeline))
	}
	if result.TotalURLs != 5 {
		t.Fatalf("total urls = %d, want 5", result.TotalURLs)
	}
	for i, entry := range result.Timeline {
		want := entry.TweetID == 5
		if entry.IsRetweet != want {
			t.Fatalf("entry %d is_retweet = %v", i, entry.IsRetweet)
		}
	}
	if result.AccountInfo == nil || result.AccountInfo.Nick != "example" {
		t.Fatalf("account info = %+v", result.AccountInfo)
	}

	meta, ok := result.Metadata.(*PaginationMetadata)
	if !ok {
		t.Fatalf("metadata type %T", result.Metadata)
	}
	if meta.HasMore {
		t.Fatal("has_more true for unbounded fetch")
	}
	if meta.NewEntries != 5 || meta.Page != 0 || meta.BatchSize != 0 {
		t.Fatalf("metadata = %+v", meta)
	}
}

func TestTimelineNegativeBatchUnbounded(t *testing.T) {
	items := []StreamItem{
		photoItem(1, embeddedUser()),
		photoItem(2, nil),
		photoItem(3, nil),
	}

	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username:  "example",
		AuthToken: "token",
		BatchSize: -5,
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	result := resp.Result
	if len(result.Timeline) != 3 {
		t.Fatalf("timeline length = %d, want 3", len(result.Timeline))
	}
	if platform.gotCfg.Count != 0 {
		t.Fatalf("page count = %d, want 0", platform.gotCfg.Count)
	}

	meta, ok := result.Metadata.(*PaginationMetadata)
	if !ok {
		t.Fatalf("metadata type %T", result.Metadata)
	}
	if meta.HasMore {
		t.Fatal("has_more true for unbounded fetch")
	}
	if meta.BatchSize != -5 {
		t.Fatalf("batch size = %d, want -5", meta.BatchSize)
	}
}

func TestTimelineOffsetSkip(t *testing.T) {
	// 220 items: page 2 with batch 100 must skip exactly 200 before counting.
	var items []StreamItem
	for i := int64(0); i < 220; i++ {
		items = append(items, photoItem(i, embeddedUser()))
	}

	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username:  "example",
		AuthToken: "token",
		BatchSize: 100,
		Page:      2,
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	result := resp.Result
	if len(result.Timeline) != 20 {
		t.Fatalf("timeline length = %d, want 20", len(result.Timeline))
	}
	if result.Timeline[0].TweetID != 200 {
		t.Fatalf("first entry id = %d, want 200", result.Timeline[0].TweetID)
	}

	meta := result.Metadata.(*PaginationMetadata)
	if meta.HasMore {
		t.Fatal("has_more true after natural exhaustion")
	}
	if meta.Page != 2 || meta.BatchSize != 100 {
		t.Fatalf("metadata = %+v", meta)
	}
}

func TestTimelineSkipPastEnd(t *testing.T) {
	// Fewer items than the skip: the skip stops early without error, the
	// page is empty, and the missing account info becomes the terminal
	// not-found failure.
	var items []StreamItem
	for i := int64(0); i < 150; i++ {
		items = append(items, photoItem(i, embeddedUser()))
	}

	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username:  "example",
		AuthToken: "token",
		BatchSize: 100,
		Page:      2,
	})

	if resp.OK() {
		t.Fatal("expected not-found error")
	}
	if resp.Err != MsgAccountNotFound {
		t.Fatalf("error = %q", resp.Err)
	}
}

func TestTimelineHasMore(t *testing.T) {
	items := []StreamItem{
		photoItem(1, embeddedUser()),
		photoItem(2, nil),
		photoItem(3, nil),
	}

	// A full batch flips has_more on.
	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "example", AuthToken: "token", BatchSize: 3,
	})
	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if meta := resp.Result.Metadata.(*PaginationMetadata); !meta.HasMore {
		t.Fatal("has_more false after full batch")
	}

	// Exhaustion below the cap leaves it off.
	platform = newFakePlatform(items[:2])
	resp = NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "example", AuthToken: "token", BatchSize: 3,
	})
	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if meta := resp.Result.Metadata.(*PaginationMetadata); meta.HasMore {
		t.Fatal("has_more true after partial batch")
	}
}

func TestTimelineMediaTypeFilter(t *testing.T) {
	items := []StreamItem{
		photoItem(1, embeddedUser()),
		videoItem(2, "video", nil),
		videoItem(3, "animated_gif", nil),
		photoItem(4, nil),
	}

	platform := newFakePlatform(items)
	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "example", AuthToken: "token", MediaType: MediaImage,
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	result := resp.Result
	// total_urls counts entries that passed the filter, not items seen.
	if result.TotalURLs != 2 || len(result.Timeline) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", result.TotalURLs, len(result.Timeline))
	}
	for _, entry := range result.Timeline {
		if entry.Type != "photo" {
			t.Fatalf("non-photo entry passed image filter: %+v", entry)
		}
	}
}

func TestTimelineWithheldScope(t *testing.T) {
	platform := newFakePlatform(nil)
	platform.ex.user = &RawUser{ID: "1", ScreenName: "example", WithheldScope: "XX"}

	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "example", AuthToken: "token",
	})

	if resp.OK() || resp.Err != MsgWithheld {
		t.Fatalf("error = %q, want withheld message", resp.Err)
	}
}

func TestTimelineLookupErrors(t *testing.T) {
	tests := []struct {
		name      string
		lookupErr error
		want      string
	}{
		{"withheld substring", errors.New("user is Withheld in some regions"), MsgWithheld},
		{"literal None", errors.New("None"), MsgAuthFailed},
		{"auth sentinel", ErrAuthentication, MsgAuthFailed},
		{"generic passthrough", errors.New("user not found"), "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newFakePlatform(nil)
			platform.ex.lookupErr = tt.lookupErr

			resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
				Username: "example", AuthToken: "token",
			})
			if resp.OK() || resp.Err != tt.want {
				t.Fatalf("error = %q, want %q", resp.Err, tt.want)
			}
		})
	}
}

func TestTimelineAccountNotFound(t *testing.T) {
	// No item ever carries an embedded user record.
	platform := newFakePlatform([]StreamItem{photoItem(1, nil), photoItem(2, nil)})

	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "example", AuthToken: "token",
	})

	if resp.OK() || resp.Err != MsgAccountNotFound {
		t.Fatalf("error = %q, want not-found message", resp.Err)
	}
}

func TestTimelineInvalidRequest(t *testing.T) {
	platform := newFakePlatform(nil)
	platform.err = &InvalidRequestError{Kind: "media", URL: "https://x.com/u/media"}

	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "u", AuthToken: "token", TimelineType: KindMedia,
	})

	if resp.OK() || !strings.Contains(resp.Err, "invalid URL") {
		t.Fatalf("error = %q", resp.Err)
	}
}

func TestTimelineValidation(t *testing.T) {
	svc := NewService(newFakePlatform(nil))

	if resp := svc.Timeline(context.Background(), TimelineRequest{AuthToken: "t"}); resp.OK() {
		t.Fatal("missing username accepted")
	}
	if resp := svc.Timeline(context.Background(), TimelineRequest{Username: "u"}); resp.OK() {
		t.Fatal("missing auth token accepted")
	}
}

func TestTimelineRequestWiring(t *testing.T) {
	platform := newFakePlatform([]StreamItem{photoItem(1, embeddedUser())})
	platform.ex.cursor = "CURSOR-1"

	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username:     "https://x.com/Example/media",
		AuthToken:    "token",
		TimelineType: KindMedia,
		BatchSize:    50,
		Retweets:     true,
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if platform.gotKind != KindMedia {
		t.Fatalf("kind = %q", platform.gotKind)
	}
	if platform.gotURL != "https://x.com/example/media" {
		t.Fatalf("url = %q", platform.gotURL)
	}
	if platform.gotCfg.AuthToken != "token" || !platform.gotCfg.Retweets || platform.gotCfg.Count != 50 {
		t.Fatalf("config = %+v", platform.gotCfg)
	}
	if !platform.ex.byScreen || platform.ex.byRestID {
		t.Fatal("expected lookup by screen name")
	}

	meta := resp.Result.Metadata.(*PaginationMetadata)
	if meta.Cursor == nil || *meta.Cursor != "CURSOR-1" {
		t.Fatalf("cursor = %v", meta.Cursor)
	}
}

func TestTimelineUserIDLookup(t *testing.T) {
	platform := newFakePlatform([]StreamItem{photoItem(1, embeddedUser())})

	resp := NewService(platform).Timeline(context.Background(), TimelineRequest{
		Username: "id:12345", AuthToken: "token",
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if !platform.ex.byRestID || platform.ex.restIDSeen != "12345" {
		t.Fatalf("rest id lookup = %v (%q)", platform.ex.byRestID, platform.ex.restIDSeen)
	}
}

func TestDateRangeUserIDResolvedAsHandle(t *testing.T) {
	platform := newFakePlatform([]StreamItem{photoItem(1, nil)})

	resp := NewService(platform).DateRange(context.Background(), DateRangeRequest{
		Username:  "id:12345",
		AuthToken: "token",
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if platform.ex.byRestID {
		t.Fatalf("rest id lookup used for %q", "id:12345")
	}
	if !platform.ex.byScreen {
		t.Fatal("screen name lookup not used")
	}
	if want := "from:id:12345 since:2024-01-01 until:2024-12-31"; resp.Result.SearchQuery != want {
		t.Fatalf("query = %q, want %q", resp.Result.SearchQuery, want)
	}
}

func TestDateRangeQuery(t *testing.T) {
	platform := newFakePlatform([]StreamItem{photoItem(1, nil)})

	resp := NewService(platform).DateRange(context.Background(), DateRangeRequest{
		Username:    "@Example",
		AuthToken:   "token",
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
		MediaFilter: "filter:media",
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	result := resp.Result

	wantQuery := "from:example since:2024-01-01 until:2024-12-31 filter:media"
	if result.SearchQuery != wantQuery {
		t.Fatalf("query = %q, want %q", result.SearchQuery, wantQuery)
	}
	if platform.gotURL != "https://x.com/search?q="+wantQuery {
		t.Fatalf("search url = %q", platform.gotURL)
	}
	if platform.gotCfg.Retweets {
		t.Fatal("retweets enabled in search mode")
	}

	// Account info comes from the user lookup, not the stream.
	if result.AccountInfo == nil || result.AccountInfo.Name != "Example User" {
		t.Fatalf("account info = %+v", result.AccountInfo)
	}
	if result.DateFilter == nil || result.DateFilter.Method != "search_api" {
		t.Fatalf("date filter = %+v", result.DateFilter)
	}

	meta, ok := result.Metadata.(*SearchMetadata)
	if !ok {
		t.Fatalf("metadata type %T", result.Metadata)
	}
	if meta.Method != "search_api" || meta.DateRange != "2024-01-01 to 2024-12-31" {
		t.Fatalf("metadata = %+v", meta)
	}
}

func TestDateRangeEmptyFilterOmitted(t *testing.T) {
	platform := newFakePlatform(nil)

	resp := NewService(platform).DateRange(context.Background(), DateRangeRequest{
		Username:  "example",
		AuthToken: "token",
		StartDate: "2024-01-01",
		EndDate:   "2024-06-30",
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	want := "from:example since:2024-01-01 until:2024-06-30"
	if resp.Result.SearchQuery != want {
		t.Fatalf("query = %q, want %q", resp.Result.SearchQuery, want)
	}
}

func TestDateRangeNoTypeFilter(t *testing.T) {
	items := []StreamItem{
		photoItem(1, nil),
		videoItem(2, "video", nil),
		videoItem(3, "animated_gif", nil),
		{Kind: ItemURL, URL: "https://example.com/external.jpg"},
		{Kind: ItemDirectory},
	}

	platform := newFakePlatform(items)
	resp := NewService(platform).DateRange(context.Background(), DateRangeRequest{
		Username: "example", AuthToken: "token",
		StartDate: "2024-01-01", EndDate: "2024-12-31",
	})

	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	// Search mode filters by media domain only.
	if resp.Result.TotalURLs != 3 {
		t.Fatalf("total urls = %d, want 3", resp.Result.TotalURLs)
	}
}

func TestDateRangeStreamInterrupted(t *testing.T) {
	items := []StreamItem{
		photoItem(1, nil),
		photoItem(2, nil),
		photoItem(3, nil),
	}

	platform := newFakePlatform(items)
	platform.ex.stream.failAt = 2
	platform.ex.stream.failErr = errors.New("connection reset")

	resp := NewService(platform).DateRange(context.Background(), DateRangeRequest{
		Username: "example", AuthToken: "token",
		StartDate: "2024-01-01", EndDate: "2024-12-31",
	})

	// A mid-stream failure truncates accumulation without failing the call.
	if !resp.OK() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if len(resp.Result.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(resp.Result.Timeline))
	}
	if meta := resp.Result.Metadata.(*SearchMetadata); meta.NewEntries != 2 {
		t.Fatalf("new entries = %d, want 2", meta.NewEntries)
	}
}

func TestDateRangeValidation(t *testing.T) {
	svc := NewService(newFakePlatform(nil))

	resp := svc.DateRange(context.Background(), DateRangeRequest{
		Username: "u", AuthToken: "t", EndDate: "2024-12-31",
	})
	if resp.OK() {
		t.Fatal("missing start date accepted")
	}
	resp = svc.DateRange(context.Background(), DateRangeRequest{
		Username: "u", AuthToken: "t", StartDate: "2024-01-01",
	})
	if resp.OK() {
		t.Fatal("missing end date accepted")
	}
}
