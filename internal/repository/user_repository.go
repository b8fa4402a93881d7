package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to surface racing inserts as conflicts.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// UserRepository provides database access for accounts and their role
// profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, role, active, created_at, updated_at`

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// CreateWithProfile inserts a user and its role profile in one
// transaction. buildProfile receives the generated user id so derived
// defaults (student/employee codes) can be computed; it may be nil for
// administrative roles, which own no profile row.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, buildProfile func(userID int64) models.Profile) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const insertUser = `INSERT INTO users (email, password_hash, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err = tx.GetContext(ctx, &user.ID, insertUser, user.Email, user.PasswordHash, user.Role, user.Active, user.CreatedAt, user.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if buildProfile != nil {
		if err = insertProfile(ctx, tx, buildProfile(user.ID)); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit register transaction: %w", err)
	}
	return nil
}

func insertProfile(ctx context.Context, tx *sqlx.Tx, profile models.Profile) error {
	switch p := profile.(type) {
	case *models.Student:
		const query = `INSERT INTO students (user_id, student_id, first_name, last_name, date_of_birth, gender, phone, address, admission_date, class_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
		if err := tx.GetContext(ctx, &p.ID, query, p.UserID, p.StudentID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone, p.Address, p.AdmissionDate, p.ClassID); err != nil {
			return fmt.Errorf("create student profile: %w", err)
		}
	case *models.Teacher:
		const query = `INSERT INTO teachers (user_id, employee_id, first_name, last_name, phone, address, date_of_birth, hire_date, qualification)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
		if err := tx.GetContext(ctx, &p.ID, query, p.UserID, p.EmployeeID, p.FirstName, p.LastName, p.Phone, p.Address, p.DateOfBirth, p.HireDate, p.Qualification); err != nil {
			return fmt.Errorf("create teacher profile: %w", err)
		}
	case *models.Parent:
		const query = `INSERT INTO parents (user_id, first_name, last_name, phone, address, occupation)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := tx.GetContext(ctx, &p.ID, query, p.UserID, p.FirstName, p.LastName, p.Phone, p.Address, p.Occupation); err != nil {
			return fmt.Errorf("create parent profile: %w", err)
		}
	default:
		return fmt.Errorf("unknown profile type %T", profile)
	}
	return nil
}

// FindStudentByUserID returns the student profile owned by a user.
func (r *UserRepository) FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	const query = `SELECT id, user_id, student_id, first_name, last_name, date_of_birth, gender, phone, address, admission_date, class_id FROM students WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindTeacherByUserID returns the teacher profile owned by a user.
func (r *UserRepository) FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employee_id, first_name, last_name, phone, address, date_of_birth, hire_date, qualification FROM teachers WHERE user_id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindParentByUserID returns the parent profile owned by a user.
func (r *UserRepository) FindParentByUserID(ctx context.Context, userID int64) (*models.Parent, error) {
	const query = `SELECT id, user_id, first_name, last_name, phone, address, occupation FROM parents WHERE user_id = $1 LIMIT 1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, userID); err != nil {
		return nil, err
	}
	return &parent, nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Update persists mutable account fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ExistsByEmail checks whether another user already holds the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	const query = `SELECT 1 FROM users WHERE email = $1 AND id <> $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// List returns a page of users with the total count. Ordering is by
// primary key ascending so pagination is stable across calls.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	base := "FROM users"
	var args []interface{}
	if filter.Role != nil {
		base += " WHERE role = $1"
		args = append(args, *filter.Role)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY id ASC LIMIT %d OFFSET %d", userColumns, base, perPage, offset)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// CountDependents counts academic records that reference the user,
// either through a student/teacher profile or directly as the acting
// account (marked, created or graded by). A non-zero count blocks
// deletion under the restrict policy. Audit rows are excluded: they are
// detached, not restricted, by DeleteWithProfile.
func (r *UserRepository) CountDependents(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT
  (SELECT COUNT(*) FROM attendance a JOIN students s ON a.student_id = s.id WHERE s.user_id = $1)
+ (SELECT COUNT(*) FROM fees f JOIN students s ON f.student_id = s.id WHERE s.user_id = $1)
+ (SELECT COUNT(*) FROM exam_results er JOIN students s ON er.student_id = s.id WHERE s.user_id = $1)
+ (SELECT COUNT(*) FROM assignment_submissions sub JOIN students s ON sub.student_id = s.id WHERE s.user_id = $1)
+ (SELECT COUNT(*) FROM assignments asg JOIN teachers t ON asg.teacher_id = t.id WHERE t.user_id = $1)
+ (SELECT COUNT(*) FROM teacher_subjects ts JOIN teachers t ON ts.teacher_id = t.id WHERE t.user_id = $1)
+ (SELECT COUNT(*) FROM classes c JOIN teachers t ON c.class_teacher_id = t.id WHERE t.user_id = $1)
+ (SELECT COUNT(*) FROM attendance a WHERE a.marked_by = $1)
+ (SELECT COUNT(*) FROM exams e WHERE e.created_by = $1)
+ (SELECT COUNT(*) FROM notices n WHERE n.created_by = $1)
+ (SELECT COUNT(*) FROM assignment_submissions sub WHERE sub.graded_by = $1)`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("count dependents: %w", err)
	}
	return total, nil
}

// DeleteWithProfile removes the user and its profile rows in one
// transaction, including parent links. Audit rows are kept but detached
// from the deleted account so the trail survives the FK. Returns
// sql.ErrNoRows when the user does not exist.
func (r *UserRepository) DeleteWithProfile(ctx context.Context, userID int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE audit_logs SET user_id = NULL WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("detach audit logs: %w", err)
	}

	cleanups := []string{
		`DELETE FROM student_parents WHERE student_id IN (SELECT id FROM students WHERE user_id = $1)`,
		`DELETE FROM student_parents WHERE parent_id IN (SELECT id FROM parents WHERE user_id = $1)`,
		`DELETE FROM students WHERE user_id = $1`,
		`DELETE FROM teachers WHERE user_id = $1`,
		`DELETE FROM parents WHERE user_id = $1`,
	}
	for _, query := range cleanups {
		if _, err = tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("delete profile rows: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit trail entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
