package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.countModel(ctx, &models.User{}, "count users")
}

func (r *dashboardRepository) CountSubjects(ctx context.Context) (int64, error) {
	return r.countModel(ctx, &models.Subject{}, "count subjects")
}

func (r *dashboardRepository) CountContacts(ctx context.Context) (int64, error) {
	return r.countModel(ctx, &models.Contact{}, "count contacts")
}

func (r *dashboardRepository) CountEnrollments(ctx context.Context) (int64, error) {
	return r.countModel(ctx, &models.Enrollment{}, "count enrollments")
}

func (r *dashboardRepository) countModel(ctx context.Context, model any, op string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, handleDBError(err, op)
	}
	return count, nil
}

func (r *dashboardRepository) RecentUsers(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, handleDBError(err, "recent users")
	}
	return users, nil
}

func (r *dashboardRepository) UsersByRole(ctx context.Context) ([]repositories.RoleCount, error) {
	var counts []repositories.RoleCount
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&counts).Error
	if err != nil {
		return nil, handleDBError(err, "users by role")
	}
	return counts, nil
}

func (r *dashboardRepository) SignupsSince(ctx context.Context, cutoff time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at >= ?", cutoff).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, handleDBError(err, "signups since")
	}
	return times, nil
}
