package flagstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/immipath/modflag/moderation/rules"
)

// gorm row for a moderation flag. Matches and History are stored as JSON
// blobs; matched tags are additionally denormalized into a delimited Tags
// column so tag search stays a plain indexed LIKE on both sqlite and postgres.
type GormFlag struct {
	ID            uint64 `gorm:"primarykey"`
	OriginalText  string
	LangCode      string
	Source        string    `gorm:"index"`
	CreatedBy     string    `gorm:"index"`
	CreatedAt     time.Time `gorm:"index"`
	MatchesJSON   []byte
	Tags          string `gorm:"index"`
	HighestTier   string `gorm:"index"`
	AutoEscalated bool
	Status        string `gorm:"index"`
	ReviewedBy    string `gorm:"index"`
	ReviewedAt    *time.Time
	ReviewerNotes string
	DeletedAt     *time.Time `gorm:"index"`
	HistoryJSON   []byte
}

func (GormFlag) TableName() string {
	return "moderation_flags"
}

// GormFlagStore is the production FlagStore, backed by postgres or sqlite.
type GormFlagStore struct {
	db *gorm.DB
}

func NewGormFlagStore(db *gorm.DB) (*GormFlagStore, error) {
	if err := db.AutoMigrate(&GormFlag{}); err != nil {
		return nil, fmt.Errorf("migrating moderation_flags: %w", err)
	}
	return &GormFlagStore{db: db}, nil
}

func (s *GormFlagStore) Create(ctx context.Context, flag *ModerationFlag) error {
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = time.Now().UTC()
	}
	rec, err := toGormFlag(flag)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	flag.ID = rec.ID
	return nil
}

func (s *GormFlagStore) Get(ctx context.Context, id uint64) (*ModerationFlag, error) {
	var rec GormFlag
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromGormFlag(&rec)
}

func (s *GormFlagStore) Update(ctx context.Context, flag *ModerationFlag) error {
	rec, err := toGormFlag(flag)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&GormFlag{}).Where("id = ?", flag.ID).Select("*").Omit("id", "created_at").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormFlagStore) Search(ctx context.Context, q Query) ([]*ModerationFlag, int, error) {
	tx := s.db.WithContext(ctx).Model(&GormFlag{})
	if !q.IncludeDeleted {
		tx = tx.Where("deleted_at IS NULL")
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.Tier != "" {
		tx = tx.Where("highest_tier = ?", string(q.Tier))
	}
	if q.ReviewedBy != "" {
		tx = tx.Where("reviewed_by = ?", q.ReviewedBy)
	}
	if q.CreatedBy != "" {
		tx = tx.Where("created_by = ?", q.CreatedBy)
	}
	if q.Tag != "" {
		tx = tx.Where("tags LIKE ?", "%,"+q.Tag+",%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order("created_at DESC, id DESC")
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.PageSize).Limit(q.PageSize)
	}

	var recs []GormFlag
	if err := tx.Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*ModerationFlag, len(recs))
	for i := range recs {
		f, err := fromGormFlag(&recs[i])
		if err != nil {
			return nil, 0, err
		}
		out[i] = f
	}
	return out, int(total), nil
}

func toGormFlag(f *ModerationFlag) (*GormFlag, error) {
	matches, err := json.Marshal(f.Matches)
	if err != nil {
		return nil, fmt.Errorf("serializing matches: %w", err)
	}
	history, err := json.Marshal(f.History)
	if err != nil {
		return nil, fmt.Errorf("serializing history: %w", err)
	}
	tags := ""
	if t := f.Tags(); len(t) > 0 {
		tags = "," + strings.Join(t, ",") + ","
	}
	return &GormFlag{
		ID:            f.ID,
		OriginalText:  f.OriginalText,
		LangCode:      f.LangCode,
		Source:        string(f.Source),
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt,
		MatchesJSON:   matches,
		Tags:          tags,
		HighestTier:   string(f.HighestTier),
		AutoEscalated: f.AutoEscalated,
		Status:        string(f.Status),
		ReviewedBy:    f.ReviewedBy,
		ReviewedAt:    f.ReviewedAt,
		ReviewerNotes: f.ReviewerNotes,
		DeletedAt:     f.DeletedAt,
		HistoryJSON:   history,
	}, nil
}

func fromGormFlag(rec *GormFlag) (*ModerationFlag, error) {
	f := ModerationFlag{
		ID:            rec.ID,
		OriginalText:  rec.OriginalText,
		LangCode:      rec.LangCode,
		Source:        Source(rec.Source),
		CreatedBy:     rec.CreatedBy,
		CreatedAt:     rec.CreatedAt,
		HighestTier:   rules.Tier(rec.HighestTier),
		AutoEscalated: rec.AutoEscalated,
		Status:        Status(rec.Status),
		ReviewedBy:    rec.ReviewedBy,
		ReviewedAt:    rec.ReviewedAt,
		ReviewerNotes: rec.ReviewerNotes,
		DeletedAt:     rec.DeletedAt,
	}
	if len(rec.MatchesJSON) > 0 {
		if err := json.Unmarshal(rec.MatchesJSON, &f.Matches); err != nil {
			return nil, fmt.Errorf("parsing matches for flag %d: %w", rec.ID, err)
		}
	}
	if len(rec.HistoryJSON) > 0 {
		if err := json.Unmarshal(rec.HistoryJSON, &f.History); err != nil {
			return nil, fmt.Errorf("parsing history for flag %d: %w", rec.ID, err)
		}
	}
	return &f, nil
}
