package twitter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/exyezed/xmeta/internal/extract"
)

// twitterTimeLayout is the timestamp format used in legacy API records.
const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

// --- Response envelopes ---

type userResponse struct {
	Data struct {
		User struct {
			Result userResult `json:"result"`
		} `json:"user"`
	} `json:"data"`
	Errors apiErrors `json:"errors"`
}

type userTweetsResponse struct {
	Data struct {
		User struct {
			Result struct {
				Timeline struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"timeline"`
				TimelineV2 struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
	Errors apiErrors `json:"errors"`
}

// timeline returns whichever timeline variant the response populated.
func (r *userTweetsResponse) timeline() timelineObj {
	tl := r.Data.User.Result.Timeline.Timeline
	if len(tl.Instructions) == 0 {
		tl = r.Data.User.Result.TimelineV2.Timeline
	}
	return tl
}

type searchResponse struct {
	Data struct {
		SearchByRawQuery struct {
			SearchTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"search_timeline"`
		} `json:"search_by_raw_query"`
	} `json:"data"`
	Errors apiErrors `json:"errors"`
}

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID string          `json:"entryId"`
	Content timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	// Module entries (the media grid) nest their item content one level down.
	Items []struct {
		Item struct {
			ItemContent json.RawMessage `json:"itemContent"`
		} `json:"item"`
	} `json:"items"`
	Value      string `json:"value"`
	CursorType string `json:"cursorType"`
}

type userResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	Legacy   struct {
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		FollowersCount  int    `json:"followers_count"`
		FriendsCount    int    `json:"friends_count"`
		StatusesCount   int    `json:"statuses_count"`
		CreatedAt       string `json:"created_at"`
		ProfileImageURL string `json:"profile_image_url_https"`
		WithheldScope   string `json:"withheld_scope"`
	} `json:"legacy"`
}

type tweetResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	// TweetWithVisibilityResults wraps the real tweet one level down.
	Tweet *tweetResult `json:"tweet"`
	Core  struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy struct {
		CreatedAt             string `json:"created_at"`
		RetweetedStatusResult *struct {
			Result tweetResult `json:"result"`
		} `json:"retweeted_status_result"`
		ExtendedEntities struct {
			Media []mediaEntity `json:"media"`
		} `json:"extended_entities"`
	} `json:"legacy"`
}

type mediaEntity struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	VideoInfo     struct {
		Variants []struct {
			Bitrate     int    `json:"bitrate"`
			ContentType string `json:"content_type"`
			URL         string `json:"url"`
		} `json:"variants"`
	} `json:"video_info"`
}

// --- Extraction helpers ---

// parseUserResult maps a GraphQL user record onto the raw account record. A
// record with no rest_id means the session could not see the account at all,
// which is indistinguishable from bad credentials.
func parseUserResult(r userResult) (*extract.RawUser, error) {
	if r.TypeName == "UserUnavailable" {
		return nil, fmt.Errorf("user unavailable (suspended or restricted)")
	}
	if r.RestID == "" {
		return nil, extract.ErrAuthentication
	}
	var createdAt time.Time
	if r.Legacy.CreatedAt != "" {
		if t, err := time.Parse(twitterTimeLayout, r.Legacy.CreatedAt); err == nil {
			createdAt = t
		}
	}
	return &extract.RawUser{
		ID:              r.RestID,
		ScreenName:      r.Legacy.ScreenName,
		Name:            r.Legacy.Name,
		CreatedAt:       createdAt,
		FollowersCount:  r.Legacy.FollowersCount,
		FriendsCount:    r.Legacy.FriendsCount,
		StatusesCount:   r.Legacy.StatusesCount,
		ProfileImageURL: r.Legacy.ProfileImageURL,
		WithheldScope:   r.Legacy.WithheldScope,
	}, nil
}

func transformUser(u *extract.RawUser) extract.UserData {
	return extract.UserData{
		Name:           u.Name,
		Nick:           u.ScreenName,
		Date:           u.CreatedAt,
		FollowersCount: u.FollowersCount,
		FriendsCount:   u.FriendsCount,
		StatusesCount:  u.StatusesCount,
		ProfileImage:   u.ProfileImageURL,
	}
}

// extractItems walks a timeline page and yields one stream item per media
// asset. tweetCount reports how many tweets the page carried regardless of
// media, which drives pagination termination.
func extractItems(tl timelineObj, includeRetweets bool) (items []extract.StreamItem, nextCursor string, tweetCount int) {
	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		for _, entry := range entries {
			if entry.Content.EntryType == "TimelineTimelineCursor" || entry.Content.TypeName == "TimelineTimelineCursor" {
				if entry.Content.CursorType == "Bottom" || strings.Contains(entry.EntryID, "cursor-bottom") {
					nextCursor = entry.Content.Value
				}
				continue
			}

			contents := [][]byte{}
			if entry.Content.ItemContent != nil {
				contents = append(contents, entry.Content.ItemContent)
			}
			for _, moduleItem := range entry.Content.Items {
				if moduleItem.Item.ItemContent != nil {
					contents = append(contents, moduleItem.Item.ItemContent)
				}
			}

			for _, content := range contents {
				var item struct {
					TypeName     string `json:"__typename"`
					TweetResults struct {
						Result tweetResult `json:"result"`
					} `json:"tweet_results"`
				}
				if err := json.Unmarshal(content, &item); err != nil {
					continue
				}
				if item.TypeName != "TimelineTweet" {
					continue
				}
				tweetCount++
				items = append(items, tweetItems(item.TweetResults.Result, includeRetweets)...)
			}
		}
	}
	return items, nextCursor, tweetCount
}

// tweetItems expands one tweet into its media stream items. Retweets take
// their media from the retweeted tweet, which also supplies the retweet id.
func tweetItems(r tweetResult, includeRetweets bool) []extract.StreamItem {
	if r.Tweet != nil {
		r = *r.Tweet
	}

	source := r
	var retweetID int64
	if rs := r.Legacy.RetweetedStatusResult; rs != nil {
		if !includeRetweets {
			return nil
		}
		source = rs.Result
		if source.Tweet != nil {
			source = *source.Tweet
		}
		retweetID = parseID(source.RestID)
	}

	tweetID := parseID(r.RestID)
	if tweetID == 0 {
		return nil
	}

	var date time.Time
	if r.Legacy.CreatedAt != "" {
		if t, err := time.Parse(twitterTimeLayout, r.Legacy.CreatedAt); err == nil {
			date = t
		}
	}

	var user *extract.UserData
	if raw, err := parseUserResult(r.Core.UserResults.Result); err == nil {
		u := transformUser(raw)
		user = &u
	} else {
		slog.Debug("skip tweet author parse error", "error", err)
	}

	var items []extract.StreamItem
	for _, media := range source.Legacy.ExtendedEntities.Media {
		url := mediaURL(media)
		if url == "" {
			continue
		}
		items = append(items, extract.StreamItem{
			Kind: extract.ItemURL,
			URL:  url,
			Tweet: extract.TweetData{
				TweetID:   tweetID,
				Date:      date,
				Type:      media.Type,
				RetweetID: retweetID,
				User:      user,
			},
		})
	}
	return items
}

// mediaURL resolves the canonical asset URL for a media entity: the original
// resolution for photos, the highest-bitrate mp4 variant for videos and GIFs.
func mediaURL(m mediaEntity) string {
	switch m.Type {
	case "photo":
		if m.MediaURLHTTPS == "" {
			return ""
		}
		return m.MediaURLHTTPS + "?name=orig"
	case "video", "animated_gif":
		best := ""
		bestRate := -1
		for _, v := range m.VideoInfo.Variants {
			if v.ContentType != "video/mp4" {
				continue
			}
			if v.Bitrate > bestRate {
				best = v.URL
				bestRate = v.Bitrate
			}
		}
		return best
	}
	return ""
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
