package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review moderation statuses. pending is the only non-terminal state; the
// transition table lives with the moderation handlers.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// AdminResponse is an optional reply attached to a moderated review.
type AdminResponse struct {
	Message     string             `bson:"message" json:"message"`
	RespondedBy primitive.ObjectID `bson:"respondedBy" json:"respondedBy"`
	RespondedAt time.Time          `bson:"respondedAt" json:"respondedAt"`
}

type Review struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProductID          primitive.ObjectID   `bson:"productId" json:"productId"`
	UserID             primitive.ObjectID   `bson:"userId" json:"userId"`
	Rating             int                  `bson:"rating" json:"rating"`
	Title              string               `bson:"title,omitempty" json:"title,omitempty"`
	Comment            string               `bson:"comment" json:"comment"`
	Status             string               `bson:"status" json:"status"`
	IsVerifiedPurchase bool                 `bson:"isVerifiedPurchase" json:"isVerifiedPurchase"`
	HelpfulVotes       []primitive.ObjectID `bson:"helpfulVotes" json:"helpfulVotes"`
	ReportedBy         []primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	AdminResponse      *AdminResponse       `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}
