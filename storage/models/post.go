package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        string             `bson:"id" json:"comment_id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Creator     primitive.ObjectID   `bson:"creator" json:"creator"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

func (p *Post) LikedBy(id primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l == id {
			return true
		}
	}
	return false
}
