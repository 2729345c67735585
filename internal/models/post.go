package models

import "time"

// Post is a post document. UserHandle and UserImage are denormalized at
// write time; UserImage is kept in sync by the fan-out engine when the
// owner changes their profile image.
type Post struct {
	ID           string    `json:"postId"`
	UserHandle   string    `json:"userHandle"`
	UserImage    string    `json:"userImage"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
}

func (p Post) ToDoc() map[string]any {
	return map[string]any{
		"userHandle":   p.UserHandle,
		"userImage":    p.UserImage,
		"content":      p.Content,
		"createdAt":    p.CreatedAt,
		"likeCount":    p.LikeCount,
		"commentCount": p.CommentCount,
	}
}

func PostFromDoc(id string, doc map[string]any) Post {
	return Post{
		ID:           id,
		UserHandle:   docString(doc, "userHandle"),
		UserImage:    docString(doc, "userImage"),
		Content:      docString(doc, "content"),
		CreatedAt:    docTime(doc, "createdAt"),
		LikeCount:    docInt(doc, "likeCount"),
		CommentCount: docInt(doc, "commentCount"),
	}
}

// CreatePostRequest is the POST /posts body.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// PostWithComments is the GET /posts/:id view.
type PostWithComments struct {
	Post
	Comments []Comment `json:"comments"`
}
