package extract

import "time"

// dateLayout is the output format for all dates in the result contract.
const dateLayout = "2006-01-02 15:04:05"

// BuildTimelineEntry projects one media URL and its tweet metadata into a
// timeline entry. A missing tweet date defaults to the current time; a
// non-empty retweet id marks the entry as a retweet.
func BuildTimelineEntry(mediaURL string, tweet TweetData) TimelineEntry {
	date := tweet.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := TimelineEntry{
		URL:     mediaURL,
		Date:    date.Format(dateLayout),
		TweetID: tweet.TweetID,
		Type:    tweet.Type,
	}

	if tweet.RetweetID != 0 {
		entry.RetweetID = tweet.RetweetID
		entry.IsRetweet = true
	}

	return entry
}

// BuildAccountInfo projects a normalized user record into the account
// snapshot of the result contract. Missing fields keep their zero defaults;
// a missing creation date renders as an empty string.
func BuildAccountInfo(u UserData) AccountInfo {
	var date string
	if !u.Date.IsZero() {
		date = u.Date.Format(dateLayout)
	}

	return AccountInfo{
		Name:           u.Name,
		Nick:           u.Nick,
		Date:           date,
		FollowersCount: u.FollowersCount,
		FriendsCount:   u.FriendsCount,
		ProfileImage:   u.ProfileImage,
		StatusesCount:  u.StatusesCount,
	}
}
