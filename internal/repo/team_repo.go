package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// ListTeamMembers returns every team member ordered by name.
func ListTeamMembers(ctx context.Context, db *gorm.DB) ([]domain.TeamMember, error) {
	var out []domain.TeamMember
	err := db.WithContext(ctx).Order("name asc, id asc").Find(&out).Error
	return out, err
}

// GetTeamMember fetches a team member by id, or ErrNotFound.
func GetTeamMember(ctx context.Context, db *gorm.DB, id string) (*domain.TeamMember, error) {
	var m domain.TeamMember
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertTeamMember inserts m or overwrites the existing row with the same id.
func UpsertTeamMember(ctx context.Context, db *gorm.DB, m *domain.TeamMember) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

// TeamMemberNames maps team member ids to display names for the given ids.
// Unknown ids are absent from the result.
func TeamMemberNames(ctx context.Context, db *gorm.DB, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.TeamMember
	if err := db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}
