package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusFailed     VideoStatus = "failed"
)

type AssetType string

const (
	AssetTypeMaster    AssetType = "master"
	AssetTypeHLS       AssetType = "hls"
	AssetTypeThumbnail AssetType = "thumbnail"
)

type TaxonomyKind string

const (
	TaxonomyKindCategory TaxonomyKind = "category"
	TaxonomyKindTopic    TaxonomyKind = "topic"
	TaxonomyKindSubject  TaxonomyKind = "subject"
)

type VoteType string

const (
	VoteTypeLike      VoteType = "like"
	VoteTypeUpVote    VoteType = "up_vote"
	VoteTypeSuperVote VoteType = "super_vote"
)

type TaggingSource string

const (
	TaggingSourceManual      TaggingSource = "manual"
	TaggingSourceRule        TaggingSource = "rule"
	TaggingSourceAISuggested TaggingSource = "ai_suggested"
	TaggingSourceAIConfirmed TaggingSource = "ai_confirmed"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type App struct {
	ID        pgtype.UUID
	Name      string
	Slug      string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type User struct {
	ID           pgtype.UUID
	AppID        pgtype.UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type TaxonomyNode struct {
	ID        pgtype.UUID
	AppID     pgtype.UUID
	Kind      TaxonomyKind
	Name      string
	Slug      string
	CreatedAt pgtype.Timestamptz
}

type Video struct {
	ID                pgtype.UUID
	AppID             pgtype.UUID
	CreatorID         pgtype.UUID
	Status            VideoStatus
	Title             string
	Description       *string
	DurationMs        int64
	AspectRatio       *float64
	PrimaryCategoryID pgtype.UUID
	CategoryIDs       []pgtype.UUID
	TopicIDs          []pgtype.UUID
	SubjectIDs        []pgtype.UUID
	SecondaryLabels   []string
	IngestSource      *string
	TaggingSource     *TaggingSource
	PrimaryAssetID    pgtype.UUID
	LikeCount         int64
	UpVoteCount       int64
	SuperVoteCount    int64
	RankingScore      float64
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

type VideoAsset struct {
	ID              pgtype.UUID
	AppID           pgtype.UUID
	VideoID         pgtype.UUID
	AssetType       AssetType
	StorageProvider string
	StorageKey      string
	CdnURL          string
	MimeType        string
	Width           *int32
	Height          *int32
	VariantLabel    *string
	IsPrimary       bool
	CreatedAt       pgtype.Timestamptz
}

type Vote struct {
	ID            pgtype.UUID
	AppID         pgtype.UUID
	VideoID       pgtype.UUID
	UserID        pgtype.UUID
	VoteType      VoteType
	GestureSource *string
	RequestID     *string
	RankPosition  *int32
	FeedMode      *string
	Weight        int32
	IsDenied      bool
	DenyReason    *string
	CreatedAt     pgtype.Timestamptz
}

type Event struct {
	ID               pgtype.UUID
	AppID            pgtype.UUID
	UserID           pgtype.UUID
	VideoID          pgtype.UUID
	RequestID        *string
	RankPosition     *int32
	FeedMode         *string
	EventType        string
	EventName        string
	SchemaVersion    int32
	GestureDirection *string
	GestureSource    *string
	Properties       []byte
	CreatedAt        pgtype.Timestamptz
}

type IngestDefaultRule struct {
	ID          pgtype.UUID
	AppID       pgtype.UUID
	Source      string
	CategoryIDs []pgtype.UUID
	TopicIDs    []pgtype.UUID
	SubjectIDs  []pgtype.UUID
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Job struct {
	ID            pgtype.UUID
	Kind          string
	Payload       []byte
	Status        JobStatus
	Attempt       int32
	MaxAttempts   int32
	BackoffBaseMs int32
	RunAfter      pgtype.Timestamptz
	LastError     *string
	LockedAt      pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}
