package employee

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context, search string) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByCode(ctx context.Context, code string, excludeID string) (*Employee, error)
	FindByEmail(ctx context.Context, email string, excludeID string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	DeleteAttendance(ctx context.Context, employeeID string) (int64, error)
	Delete(ctx context.Context, id string) (*Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context, search string) ([]Employee, error) {
	var empls []Employee
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where(
			"employee_code ILIKE ? OR full_name ILIKE ? OR email ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	err := q.Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByCode(ctx context.Context, code string, excludeID string) (*Employee, error) {
	return r.findOneBy(ctx, "employee_code", code, excludeID)
}

func (r *repository) FindByEmail(ctx context.Context, email string, excludeID string) (*Employee, error) {
	return r.findOneBy(ctx, "email", email, excludeID)
}

func (r *repository) findOneBy(ctx context.Context, column, value, excludeID string) (*Employee, error) {
	var empl Employee
	q := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Take(&empl).Error
	return &empl, err
}

// Update writes every column of an existing row. A row deleted in the
// meantime yields gorm.ErrRecordNotFound instead of being inserted again.
func (r *repository) Update(ctx context.Context, empl *Employee) error {
	res := r.db.WithContext(ctx).
		Model(empl).
		Select("*").
		Omit("id", "created_at").
		Updates(empl)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteAttendance(ctx context.Context, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).Exec("DELETE FROM attendance WHERE employee_id = ?", employeeID)
	return res.RowsAffected, res.Error
}

// Delete removes the row and returns its state before deletion.
func (r *repository) Delete(ctx context.Context, id string) (*Employee, error) {
	var deleted []Employee
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(deleted) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &deleted[0], nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
