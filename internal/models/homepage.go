package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HeroSlide struct {
	Title    string `bson:"title" json:"title"`
	Subtitle string `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Image    string `bson:"image" json:"image"`
	LinkURL  string `bson:"linkUrl,omitempty" json:"linkUrl,omitempty"`
}

type SocialLinks struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	WhatsApp  string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
}

// HomePageSettings is a singleton document edited from the back office.
type HomePageSettings struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	HeroSlides         []HeroSlide          `bson:"heroSlides" json:"heroSlides"`
	FeaturedComboIDs   []primitive.ObjectID `bson:"featuredComboIds" json:"featuredComboIds"`
	FeaturedProductIDs []primitive.ObjectID `bson:"featuredProductIds" json:"featuredProductIds"`
	Announcement       string               `bson:"announcement,omitempty" json:"announcement,omitempty"`
	ContactEmail       string               `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	ContactPhone       string               `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	Social             SocialLinks          `bson:"social" json:"social"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}
