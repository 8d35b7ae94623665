package cache

import "fmt"

// Cache keyspace. user:<id> doubles as session snapshot and cached user view;
// the search scan over active users iterates exactly these keys.
const (
	KindUser = "user"
	KindPost = "post"

	viewCountKey = "posts:requests"
)

func UserKey(id string) string { return fmt.Sprintf("%s:%s", KindUser, id) }

func PostKey(id string) string { return fmt.Sprintf("%s:%s", KindPost, id) }

func FollowersKey(followedID string) string { return fmt.Sprintf("followers:%s", followedID) }

func FollowerIndexKey(followedID string) string { return fmt.Sprintf("followers:index:%s", followedID) }
