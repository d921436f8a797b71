package domain

import (
	"time"
)

// Visibility tiers of an activity entry.
const (
	VisibilityPublic = "public"
	VisibilityAdmin  = "admin"
)

// User is the identity collaborator's record. Content authored by a user
// keeps living after the user is gone, with the reference nulled out.
type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:40;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"-"` // input only, not stored in db
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt    time.Time `json:"join_date"`
}

type Document struct {
	ID        uint64    `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:32;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	Archived  bool      `gorm:"default:false;not null"`
	CreatorID *uint64
	Creator   *User `gorm:"foreignKey:CreatorID"`
}

// Revision is one immutable snapshot of a document body.
type Revision struct {
	ID          uint64    `gorm:"primaryKey"`
	Fingerprint string    `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"index:idx_revisions_document_created,priority:2;not null"`
	DocumentID  uint64    `gorm:"index:idx_revisions_document_created,priority:1;not null"`
	Document    *Document `gorm:"foreignKey:DocumentID"`
	AuthorID    *uint64   `gorm:"index"`
	Author      *User     `gorm:"foreignKey:AuthorID"`
	Body        string    `gorm:"type:text;not null"`
	Comment     *string   `gorm:"type:text"`
}

type Tag struct {
	ID          uint64    `gorm:"primaryKey"`
	Name        string    `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	CreatorID   *uint64
	Creator     *User   `gorm:"foreignKey:CreatorID"`
	Description *string `gorm:"type:text"`
}

type RevisionTag struct {
	RevisionID uint64    `gorm:"primaryKey;autoIncrement:false"`
	Revision   *Revision `gorm:"foreignKey:RevisionID"`
	TagID      uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	Tag        *Tag      `gorm:"foreignKey:TagID"`
}

type Comment struct {
	ID         uint64    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
	DocumentID uint64    `gorm:"index;not null"`
	Document   *Document `gorm:"foreignKey:DocumentID"`
	ParentID   *uint64
	Parent     *Comment `gorm:"foreignKey:ParentID"`
	AuthorID   *uint64  `gorm:"index"`
	Author     *User    `gorm:"foreignKey:AuthorID"`
	Body       string   `gorm:"type:text;not null"`
}

type Watch struct {
	ID         uint64    `gorm:"primaryKey"`
	UserID     uint64    `gorm:"uniqueIndex:idx_watches_user_document;not null"`
	User       *User     `gorm:"foreignKey:UserID"`
	DocumentID uint64    `gorm:"uniqueIndex:idx_watches_user_document;index;not null"`
	Document   *Document `gorm:"foreignKey:DocumentID"`
	CreatedAt  time.Time
}

// ActivityEntry is one immutable audit record.
type ActivityEntry struct {
	ID                 uint64    `gorm:"primaryKey"`
	CreatedAt          time.Time `gorm:"index;not null"`
	Body               string    `gorm:"size:512;not null"`
	InitiatorID        *uint64
	Initiator          *User `gorm:"foreignKey:InitiatorID"`
	AffectedUserID     *uint64
	AffectedUser       *User `gorm:"foreignKey:AffectedUserID"`
	AffectedDocumentID *uint64
	AffectedDocument   *Document `gorm:"foreignKey:AffectedDocumentID"`
	Visibility         string    `gorm:"size:8;index;not null"`
}

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&Document{},
		&Revision{},
		&Tag{},
		&RevisionTag{},
		&Comment{},
		&Watch{},
		&ActivityEntry{},
	}
}
