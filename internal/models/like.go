package models

// Like marks that a user liked a post. At most one like is expected per
// (userHandle, postId) pair, enforced by a pre-check query at like time.
type Like struct {
	ID         string `json:"likeId,omitempty"`
	PostID     string `json:"postId"`
	UserHandle string `json:"userHandle"`
}

func (l Like) ToDoc() map[string]any {
	return map[string]any{
		"postId":     l.PostID,
		"userHandle": l.UserHandle,
	}
}

func LikeFromDoc(id string, doc map[string]any) Like {
	return Like{
		ID:         id,
		PostID:     docString(doc, "postId"),
		UserHandle: docString(doc, "userHandle"),
	}
}
