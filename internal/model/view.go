package model

import "time"

// UserView is the flattened user+profile projection used by every outward
// response and by the cached session snapshot. It deliberately has no
// password field, so a cached or serialized copy can never leak the hash.
type UserView struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ProfilePic    string    `json:"profilePic"`
	Bio           string    `json:"bio"`
	Gender        string    `json:"gender"`
	AccountStatus string    `json:"accountStatus"`
}

/// ToMap flattens the view into the redis hash encoding. Field types:
// every value is a verbatim string, timestamps are RFC3339.
func (v UserView) ToMap() map[string]string {
	return map[string]string{
		"id":            v.ID,
		"fullName":      v.FullName,
		"username":      v.Username,
		"email":         v.Email,
		"role":          v.Role,
		"createdAt":     v.CreatedAt.Format(time.RFC3339),
		"updatedAt":     v.UpdatedAt.Format(time.RFC3339),
		"profilePic":    v.ProfilePic,
		"bio":           v.Bio,
		"gender":        v.Gender,
		"accountStatus": v.AccountStatus,
	}
}

// UserViewFromMap is the inverse of ToMap. Unparseable timestamps are left
// zero rather than failing the read; the id field is the only one a caller
// may rely on being present.
func UserViewFromMap(m map[string]string) UserView {
	created, _ := time.Parse(time.RFC3339, m["createdAt"])
	updated, _ := time.Parse(time.RFC3339, m["updatedAt"])
	return UserView{
		ID:            m["id"],
		FullName:      m["fullName"],
		Username:      m["username"],
		Email:         m["email"],
		Role:          m["role"],
		CreatedAt:     created,
		UpdatedAt:     updated,
		ProfilePic:    m["profilePic"],
		Bio:           m["bio"],
		Gender:        m["gender"],
		AccountStatus: m["accountStatus"],
	}
}

// CombineUserProfile builds the flattened projection from the two rows.
func CombineUserProfile(u User, p ProfileInfo) UserView {
	return UserView{
		ID:            u.ID,
		FullName:      u.FullName,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		ProfilePic:    p.ProfilePic,
		Bio:           p.Bio,
		Gender:        p.Gender,
		AccountStatus: p.AccountStatus,
	}
}

// FollowerSnapshot is the denormalized public identity of one follower,
// stored per followed-user hash. Stale-tolerant; patched by the identity
// fan-out, removed on unfollow.
type FollowerSnapshot struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

// PostAuthor is the slice of author identity embedded in PostView.
type PostAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PostComment is a comment as it appears inside an assembled PostView.
type PostComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	ReplyToID *string   `json:"replyToId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

/// PostView is the assembled post aggregate cached under post:<id>.
// View counts are NOT part of it; they are merged at serve time.
type PostView struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Image     string        `json:"image"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Author    PostAuthor    `json:"author"`
	Comments  []PostComment `json:"comments"`
	Likes     []PostAuthor  `json:"likes"`
}
