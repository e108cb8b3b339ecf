package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetOrganization      = "Pengurus"
	SheetTeacherAttendance = "Absensi Pengajar"
	SheetAchievements      = "Prestasi"
	SheetFinance           = "Keuangan"
	SheetIncome            = "Pemasukan"
	SheetExpense           = "Pengeluaran"

	StudentSheetPrefix    = "Santri "
	AttendanceSheetPrefix = "Absensi "

	TotalLabel = "TOTAL"

	maxSheetNameLength = 31
	dateLayout         = "2006-01-02"
)

var (
	organizationHeader      = []interface{}{"No", "Nama", "Jabatan", "Telepon", "Email", "Alamat", "Tanggal Bergabung"}
	studentHeader           = []interface{}{"No", "NIS", "Nama", "Jenis Kelamin", "Tanggal Lahir", "Nama Wali", "Telepon Wali", "Alamat", "Status"}
	studentAttendanceHeader = []interface{}{"No", "Tanggal", "Nama Santri", "Status", "Keterangan"}
	teacherAttendanceHeader = []interface{}{"No", "Tanggal", "Nama Pengajar", "Status", "Jam Masuk", "Jam Keluar", "Keterangan"}
	achievementHeader       = []interface{}{"No", "Tanggal", "Nama Santri", "Prestasi", "Kategori", "Tingkat", "Keterangan"}
	financeHeader           = []interface{}{"No", "Tanggal", "Jenis", "Kategori", "Jumlah", "Keterangan", "Metode Pembayaran"}
	// income and expense sheets; TOTAL goes under Jumlah (column D)
	cashHeader = []interface{}{"No", "Tanggal", "Kategori", "Jumlah", "Keterangan", "Metode Pembayaran"}
)

// ReportFilename is the attachment name for an export made at t.
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("laporan-tpq-%s.xlsx", t.Format(dateLayout))
}

// sheetNamer hands out Excel-safe sheet names, unique within one workbook.
// The fixed sheet names are reserved up front, so a class can never take one.
type sheetNamer struct {
	used     map[string]bool
	reserved map[string]bool
}

func newSheetNamer() *sheetNamer {
	n := &sheetNamer{used: make(map[string]bool), reserved: make(map[string]bool)}
	for _, name := range []string{SheetOrganization, SheetTeacherAttendance, SheetAchievements, SheetFinance, SheetIncome, SheetExpense} {
		n.reserved[strings.ToLower(name)] = true
	}
	return n
}

// SanitizeSheetName drops characters Excel rejects in sheet names and cuts
// the result to 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Sheet"
	}
	return utils.TruncateRunes(name, maxSheetNameLength)
}

// fixed claims one of the reserved names.
func (n *sheetNamer) fixed(name string) string {
	n.used[strings.ToLower(name)] = true
	return name
}

func (n *sheetNamer) taken(name string) bool {
	key := strings.ToLower(name)
	return n.used[key] || n.reserved[key]
}

// next returns name, sanitized and suffixed with " (n)" while it is taken.
func (n *sheetNamer) next(name string) string {
	base := SanitizeSheetName(name)
	candidate := base
	for i := 2; n.taken(candidate); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = utils.TruncateRunes(base, maxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

type workbookWriter struct {
	f         *excelize.File
	names     *sheetNamer
	boldStyle int
	sheets    []string
}

func (w *workbookWriter) addSheet(sheet string, header []interface{}, rows [][]interface{}) error {
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}
	w.sheets = append(w.sheets, sheet)

	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.boldStyle); err != nil {
		return err
	}
	for i, row := range rows {
		row := row
		if err := w.f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

// addTotalRow writes a bold TOTAL row under the data rows of sheet.
func (w *workbookWriter) addTotalRow(sheet string, rowCount int, width int, amountCol int, total float64) error {
	rowNo := rowCount + 2
	if err := w.f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNo), TotalLabel); err != nil {
		return err
	}
	amountCell, err := excelize.CoordinatesToCellName(amountCol, rowNo)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(sheet, amountCell, total); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, rowNo)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNo), last, w.boldStyle)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func teacherRows(teachers []*models.Teacher) [][]interface{} {
	rows := make([][]interface{}, 0, len(teachers))
	for i, t := range teachers {
		rows = append(rows, []interface{}{i + 1, t.Name, t.Position, t.Phone, t.Email, t.Address, formatDate(t.JoinDate)})
	}
	return rows
}

func studentRows(students []*models.Student) [][]interface{} {
	rows := make([][]interface{}, 0, len(students))
	for i, s := range students {
		rows = append(rows, []interface{}{i + 1, s.Nis, s.Name, s.Gender, formatDate(s.BirthDate), s.ParentName, s.ParentPhone, s.Address, string(s.Status)})
	}
	return rows
}

func studentAttendanceRows(attendance []*StudentAttendanceRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(attendance))
	for i, a := range attendance {
		rows = append(rows, []interface{}{i + 1, formatDate(&a.Date), a.StudentName, a.Status, a.Notes})
	}
	return rows
}

func teacherAttendanceRows(attendance []*TeacherAttendanceRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(attendance))
	for i, a := range attendance {
		rows = append(rows, []interface{}{i + 1, formatDate(&a.Date), a.TeacherName, a.Status, a.CheckIn, a.CheckOut, a.Notes})
	}
	return rows
}

func achievementRows(achievements []*AchievementRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(achievements))
	for i, a := range achievements {
		rows = append(rows, []interface{}{i + 1, formatDate(&a.Date), a.StudentName, a.Title, a.Category, a.Level, a.Description})
	}
	return rows
}

func financeRows(transactions []*models.FinancialTransaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(transactions))
	for i, t := range transactions {
		rows = append(rows, []interface{}{i + 1, formatDate(&t.TransactionDate), string(t.Type), t.Category, t.Amount.InexactFloat64(), t.Description, t.PaymentMethod})
	}
	return rows
}

// cashTotal sums the amounts exactly as cashRows writes them, so the TOTAL
// cell equals the sum of the cells above it.
func cashTotal(transactions []*models.FinancialTransaction) float64 {
	var total float64
	for _, t := range transactions {
		total += t.Amount.InexactFloat64()
	}
	return total
}

func cashRows(transactions []*models.FinancialTransaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(transactions))
	for i, t := range transactions {
		rows = append(rows, []interface{}{i + 1, formatDate(&t.TransactionDate), t.Category, t.Amount.InexactFloat64(), t.Description, t.PaymentMethod})
	}
	return rows
}

// RenderWorkbook lays out data as sheets in a fixed order: organization,
// students and attendance per class, teacher attendance, achievements, then
// the finance sheets.
func RenderWorkbook(data *ReportData) (*excelize.File, error) {
	f := excelize.NewFile()
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	w := &workbookWriter{f: f, names: newSheetNamer(), boldStyle: boldStyle}

	render := func() error {
		if err := w.addSheet(w.names.fixed(SheetOrganization), organizationHeader, teacherRows(data.Teachers)); err != nil {
			return err
		}
		for _, c := range data.Classes {
			if err := w.addSheet(w.names.next(StudentSheetPrefix+c.Class.Name), studentHeader, studentRows(c.Students)); err != nil {
				return err
			}
		}
		for _, c := range data.Classes {
			if err := w.addSheet(w.names.next(AttendanceSheetPrefix+c.Class.Name), studentAttendanceHeader, studentAttendanceRows(c.Attendance)); err != nil {
				return err
			}
		}
		if err := w.addSheet(w.names.fixed(SheetTeacherAttendance), teacherAttendanceHeader, teacherAttendanceRows(data.TeacherAttendance)); err != nil {
			return err
		}
		if err := w.addSheet(w.names.fixed(SheetAchievements), achievementHeader, achievementRows(data.Achievements)); err != nil {
			return err
		}
		if err := w.addSheet(w.names.fixed(SheetFinance), financeHeader, financeRows(data.Transactions)); err != nil {
			return err
		}
		income := w.names.fixed(SheetIncome)
		if err := w.addSheet(income, cashHeader, cashRows(data.Income)); err != nil {
			return err
		}
		if err := w.addTotalRow(income, len(data.Income), len(cashHeader), 4, cashTotal(data.Income)); err != nil {
			return err
		}
		expense := w.names.fixed(SheetExpense)
		if err := w.addSheet(expense, cashHeader, cashRows(data.Expense)); err != nil {
			return err
		}
		return w.addTotalRow(expense, len(data.Expense), len(cashHeader), 4, cashTotal(data.Expense))
	}
	if err := render(); err != nil {
		f.Close()
		return nil, err
	}

	// drop the default sheet excelize starts with
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	if idx, err := f.GetSheetIndex(w.sheets[0]); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// BuildReport collects and renders the tenant's workbook and names the file
// after today's date. Exports of one tenant are serialized by a Redis lock
// when one is available.
func BuildReport(ctx context.Context, adminId string) (*excelize.File, string, error) {
	if adminId == "" {
		return nil, "", utils.ErrUnauthorized
	}
	logger := config.GetLogger()
	started := time.Now()
	defer logSlowReport(ctx, "BuildReport", started, map[string]any{"admin_id": adminId})

	lock := obtainReportLock(ctx, adminId)
	defer func() {
		if lock == nil {
			return
		}
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{
				"field":    "BuildReport",
				"admin_id": adminId,
			}).Warn("failed to release report lock: " + err.Error())
		}
	}()

	data, err := CollectReportData(ctx, adminId)
	if err != nil {
		config.LogError(logger, "reports", "BuildReport", "collect report data", adminId, err)
		return nil, "", err
	}
	f, err := RenderWorkbook(data)
	if err != nil {
		config.LogError(logger, "reports", "BuildReport", "render workbook", adminId, err)
		return nil, "", err
	}
	return f, ReportFilename(started), nil
}

// obtainReportLock is best-effort: without Redis, or when another export holds
// the lock past the wait, the export proceeds unlocked.
func obtainReportLock(ctx context.Context, adminId string) *redislock.Lock {
	locker := config.GetRedisLock()
	logger := config.GetLogger()
	if locker == nil {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, reportLockWait)
	defer cancel()
	lock, err := locker.Obtain(waitCtx, "Lock:report:"+adminId, reportLockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(200 * time.Millisecond),
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"field":    "BuildReport",
			"admin_id": adminId,
		}).Warn("could not obtain report lock; proceeding without lock: " + err.Error())
		return nil
	}
	return lock
}
