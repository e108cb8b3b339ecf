package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("tpq-reports")

// parallel query fan-out limit when REPORT_PARALLEL_QUERIES is on
const reportQueryLimit = 4

type ClassReport struct {
	Class      *models.Class
	Students   []*models.Student
	Attendance []*StudentAttendanceRow
}

type StudentAttendanceRow struct {
	Date        time.Time `json:"date"`
	StudentName string    `json:"student_name"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
}

type TeacherAttendanceRow struct {
	Date        time.Time `json:"date"`
	TeacherName string    `json:"teacher_name"`
	Status      string    `json:"status"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out"`
	Notes       string    `json:"notes"`
}

type AchievementRow struct {
	Date        time.Time `json:"date"`
	StudentName string    `json:"student_name"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
}

// ReportData is everything one export needs, already scoped to one tenant.
type ReportData struct {
	AdminId           string
	GeneratedAt       time.Time
	Teachers          []*models.Teacher
	Classes           []*ClassReport
	TeacherAttendance []*TeacherAttendanceRow
	Achievements      []*AchievementRow
	Transactions      []*models.FinancialTransaction
	Income            []*models.FinancialTransaction
	Expense           []*models.FinancialTransaction
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
}

type reportQuery struct {
	name string
	run  func(ctx context.Context, db *gorm.DB) error
}

// CollectReportData runs every export query for adminId. Any failure aborts
// the whole collection with ErrStorage.
func CollectReportData(ctx context.Context, adminId string) (data *ReportData, err error) {
	if adminId == "" {
		return nil, utils.ErrUnauthorized
	}
	ctx, span := tracer.Start(ctx, "reports.CollectReportData",
		trace.WithAttributes(attribute.String("admin_id", adminId)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	db := config.GetDB()
	data = &ReportData{AdminId: adminId, GeneratedAt: time.Now()}

	var classes []*models.Class
	if err := db.WithContext(ctx).Where("admin_id = ?", adminId).Order("name, id").Find(&classes).Error; err != nil {
		return nil, utils.StorageError("report classes", err)
	}
	data.Classes = make([]*ClassReport, len(classes))

	queries := []reportQuery{
		{"teachers", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).
				Where("admin_id = ? AND status = ?", adminId, models.MemberStatusActive).
				Order("position, name, id").
				Find(&data.Teachers).Error
		}},
	}
	for i, class := range classes {
		report := &ClassReport{Class: class}
		data.Classes[i] = report
		classId := class.ID
		queries = append(queries,
			reportQuery{"students", func(ctx context.Context, db *gorm.DB) error {
				return db.WithContext(ctx).
					Where("admin_id = ? AND class_id = ?", adminId, classId).
					Order("name, id").
					Find(&report.Students).Error
			}},
			reportQuery{"student attendance", func(ctx context.Context, db *gorm.DB) error {
				return db.WithContext(ctx).Model(&models.StudentAttendance{}).
					Select("student_attendances.date, students.name AS student_name, student_attendances.status, student_attendances.notes").
					Joins("LEFT JOIN students ON students.id = student_attendances.student_id AND students.admin_id = student_attendances.admin_id").
					Where("student_attendances.admin_id = ? AND student_attendances.class_id = ?", adminId, classId).
					Order("student_attendances.date DESC, student_attendances.id DESC").
					Scan(&report.Attendance).Error
			}},
		)
	}
	queries = append(queries,
		reportQuery{"teacher attendance", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Model(&models.TeacherAttendance{}).
				Select("teacher_attendances.date, teachers.name AS teacher_name, teacher_attendances.status, teacher_attendances.check_in, teacher_attendances.check_out, teacher_attendances.notes").
				Joins("LEFT JOIN teachers ON teachers.id = teacher_attendances.teacher_id AND teachers.admin_id = teacher_attendances.admin_id").
				Where("teacher_attendances.admin_id = ?", adminId).
				Order("teacher_attendances.date DESC, teacher_attendances.id DESC").
				Scan(&data.TeacherAttendance).Error
		}},
		reportQuery{"achievements", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Model(&models.Achievement{}).
				Select("achievements.date, students.name AS student_name, achievements.title, achievements.category, achievements.level, achievements.description").
				Joins("LEFT JOIN students ON students.id = achievements.student_id AND students.admin_id = achievements.admin_id").
				Where("achievements.admin_id = ?", adminId).
				Order("achievements.date DESC, achievements.id DESC").
				Scan(&data.Achievements).Error
		}},
		reportQuery{"transactions", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).
				Where("admin_id = ?", adminId).
				Order("transaction_date DESC, id DESC").
				Find(&data.Transactions).Error
		}},
		reportQuery{"income", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).
				Where("admin_id = ? AND type = ?", adminId, models.TransactionTypeIncome).
				Order("transaction_date DESC, id DESC").
				Find(&data.Income).Error
		}},
		reportQuery{"expense", func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).
				Where("admin_id = ? AND type = ?", adminId, models.TransactionTypeExpense).
				Order("transaction_date DESC, id DESC").
				Find(&data.Expense).Error
		}},
	)

	if err := runReportQueries(ctx, db, queries, config.ReportParallelQueries()); err != nil {
		return nil, err
	}

	data.TotalIncome, _ = models.SumTransactions(data.Income)
	_, data.TotalExpense = models.SumTransactions(data.Expense)
	return data, nil
}

// runReportQueries runs the queries in order, or concurrently when parallel is
// set. Each query writes only its own destination.
func runReportQueries(ctx context.Context, db *gorm.DB, queries []reportQuery, parallel bool) error {
	if !parallel {
		for _, q := range queries {
			if err := q.run(ctx, db); err != nil {
				return utils.StorageError("report "+q.name, err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportQueryLimit)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			if err := q.run(gctx, db); err != nil {
				return utils.StorageError("report "+q.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
