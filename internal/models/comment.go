package models

import "time"

// Comment is a comment document. Comments are only removed by the
// post-deletion cascade, never in isolation.
type Comment struct {
	ID         string    `json:"commentId,omitempty"`
	PostID     string    `json:"postId"`
	UserHandle string    `json:"userHandle"`
	UserImage  string    `json:"userImage"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c Comment) ToDoc() map[string]any {
	return map[string]any{
		"postId":     c.PostID,
		"userHandle": c.UserHandle,
		"userImage":  c.UserImage,
		"body":       c.Body,
		"createdAt":  c.CreatedAt,
	}
}

func CommentFromDoc(id string, doc map[string]any) Comment {
	return Comment{
		ID:         id,
		PostID:     docString(doc, "postId"),
		UserHandle: docString(doc, "userHandle"),
		UserImage:  docString(doc, "userImage"),
		Body:       docString(doc, "body"),
		CreatedAt:  docTime(doc, "createdAt"),
	}
}

// CreateCommentRequest is the POST /posts/:id/comment body.
type CreateCommentRequest struct {
	Body string `json:"body"`
}
