package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/tabular"
)

// Counts summarizes entity totals.
type Counts struct {
	Instructors int `json:"instructors"`
	Modules     int `json:"modules"`
	Software    int `json:"software"`
}

func documentCounts(doc *model.Document) Counts {
	return Counts{
		Instructors: doc.Instructors.Len(),
		Modules:     doc.Modules.Len(),
		Software:    doc.SoftwareCount(),
	}
}

func workbookCounts(wb *tabular.Workbook) Counts {
	return Counts{
		Instructors: wb.RowCount(tabular.SheetInstructors),
		Modules:     wb.RowCount(tabular.SheetModules),
		Software:    wb.RowCount(tabular.SheetSoftware),
	}
}

// ExportResult describes a completed export.
type ExportResult struct {
	Path   string `json:"path"`
	Counts Counts `json:"counts"`
}

// ImportResult describes a completed import.
type ImportResult struct {
	Path   string             `json:"path"`
	Counts Counts             `json:"counts"`
	Issues []tabular.RowIssue `json:"issues"`

	// Repairs lists ownership links rewritten to make both sides agree.
	Repairs []string `json:"repairs"`
}

// SyncStatus compares the document with its workbook mirror.
type SyncStatus struct {
	DocumentPath   string    `json:"document_path"`
	WorkbookPath   string    `json:"workbook_path"`
	WorkbookExists bool      `json:"workbook_exists"`
	WorkbookMTime  time.Time `json:"workbook_mtime,omitzero"`
	Document       Counts    `json:"document"`
	Workbook       Counts    `json:"workbook"`

	// InSync is true when the workbook's source sheets equal a fresh
	// projection of the document.
	InSync bool `json:"in_sync"`

	DocumentError string `json:"document_error,omitempty"`
	WorkbookError string `json:"workbook_error,omitempty"`
}

func (s *Store) codec(op string) (tabular.Codec, error) {
	if s.cfg.WorkbookPath == "" {
		return nil, model.Errorf(model.CodeValidationFailed, op, "no workbook path configured")
	}
	codec, err := tabular.OpenCodec(s.cfg.WorkbookPath)
	if err != nil {
		return nil, withOp(err, op)
	}
	return codec, nil
}

// ExportTabular projects the current document into the workbook,
// replacing it.
func (s *Store) ExportTabular(ctx context.Context) (res ExportResult, err error) {
	const op = "export_tabular"
	began := time.Now()
	defer func() { s.finish(ctx, op, began, model.AuditEntry{}, err) }()

	codec, err := s.codec(op)
	if err != nil {
		return ExportResult{}, err
	}
	sn, err := s.Reload(ctx)
	if err != nil {
		return ExportResult{}, withOp(err, op)
	}
	if err := codec.Write(s.cfg.WorkbookPath, tabular.Project(sn.doc)); err != nil {
		return ExportResult{}, withOp(err, op)
	}
	return ExportResult{Path: s.cfg.WorkbookPath, Counts: documentCounts(sn.doc)}, nil
}

// ImportTabular replaces the document's instructors and modules with the
// workbook's contents. The audit log and pass-through sections are kept.
// Ownership is reconciled with module owners winning, and the result must
// pass structural validation and uniqueness checks before it is persisted.
func (s *Store) ImportTabular(ctx context.Context) (ImportResult, error) {
	const op = "import_tabular"

	codec, err := s.codec(op)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Path: s.cfg.WorkbookPath}
	err = s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		wb, err := codec.Read(s.cfg.WorkbookPath)
		if err != nil {
			return model.AuditEntry{}, withOp(err, op)
		}
		rebuilt, issues, err := tabular.Reconstruct(wb)
		if err != nil {
			return model.AuditEntry{}, withOp(err, op)
		}
		res.Issues = issues
		res.Repairs = reconcileOwnership(rebuilt)

		before := documentCounts(doc)
		doc.Instructors = rebuilt.Instructors
		doc.Modules = rebuilt.Modules
		if err := document.MustBeValid(op, doc); err != nil {
			return model.AuditEntry{}, err
		}
		if err := checkUnique(op, doc); err != nil {
			return model.AuditEntry{}, err
		}
		if err := s.checkRecords(op, doc); err != nil {
			return model.AuditEntry{}, err
		}

		res.Counts = documentCounts(doc)
		var d diff
		d.record("instructors", strconv.Itoa(before.Instructors), strconv.Itoa(res.Counts.Instructors))
		d.record("modules", strconv.Itoa(before.Modules), strconv.Itoa(res.Counts.Modules))
		d.record("software", strconv.Itoa(before.Software), strconv.Itoa(res.Counts.Software))
		return model.AuditEntry{Action: model.ActionUpdated, Changes: d.changes}, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.metrics.observeImportIssues(len(res.Issues))
	for _, is := range res.Issues {
		s.log.Warn().Str("op", op).Str("sheet", is.Sheet).Int("row", is.Row).Msg(is.Message)
	}
	return res, nil
}

// checkUnique enforces email and code uniqueness across a whole document.
func checkUnique(op string, doc *model.Document) error {
	for _, id := range doc.Instructors.Keys() {
		inst, _ := doc.Instructors.Get(id)
		if other, taken := emailOwner(doc, inst.Email, id); taken {
			return model.Errorf(model.CodeDuplicate, op,
				"instructors %s and %s share email %s", other, id, inst.Email)
		}
	}
	for _, id := range doc.Modules.Keys() {
		m, _ := doc.Modules.Get(id)
		if other, taken := codeOwner(doc, m.Code, id); taken {
			return model.Errorf(model.CodeDuplicate, op,
				"modules %s and %s share code %s", other, id, m.Code)
		}
	}
	return nil
}

// checkRecords applies the same field rules mutations use to every record,
// so an imported record stays editable afterwards.
func (s *Store) checkRecords(op string, doc *model.Document) error {
	var violations []model.Violation
	collect := func(prefix string, err error) {
		if err == nil {
			return
		}
		vs := model.ViolationsOf(err)
		if len(vs) == 0 {
			violations = append(violations, model.Violation{Path: prefix, Message: err.Error()})
			return
		}
		for _, v := range vs {
			// Replace the struct name with the record's document path.
			_, field, _ := strings.Cut(v.Path, ".")
			violations = append(violations, model.Violation{Path: prefix + "." + field, Message: v.Message})
		}
	}
	doc.Instructors.Each(func(id string, inst *model.Instructor) {
		collect("instructors."+id, s.checkInput(op, inst))
	})
	doc.Modules.Each(func(id string, m *model.Module) {
		collect("modules."+id, s.checkInput(op, m))
	})
	if len(violations) == 0 {
		return nil
	}
	return &model.Error{
		Code:       model.CodeValidationFailed,
		Op:         op,
		Message:    fmt.Sprintf("workbook has %d invalid field(s)", len(violations)),
		Violations: violations,
	}
}

// SyncStatus reports counts on both sides and whether they agree. Read
// failures are reported in the result rather than returned.
func (s *Store) SyncStatus(ctx context.Context) SyncStatus {
	st := SyncStatus{DocumentPath: s.cfg.DocumentPath, WorkbookPath: s.cfg.WorkbookPath}

	sn, err := s.Reload(ctx)
	if err != nil {
		st.DocumentError = err.Error()
	} else {
		st.Document = documentCounts(sn.doc)
	}

	codec, err := s.codec("sync_status")
	if err != nil {
		st.WorkbookError = err.Error()
		return st
	}
	info, err := os.Stat(s.cfg.WorkbookPath)
	if errors.Is(err, fs.ErrNotExist) {
		return st
	}
	if err != nil {
		st.WorkbookError = err.Error()
		return st
	}
	st.WorkbookExists = true
	st.WorkbookMTime = info.ModTime()

	wb, err := codec.Read(s.cfg.WorkbookPath)
	if err != nil {
		st.WorkbookError = err.Error()
		return st
	}
	st.Workbook = workbookCounts(wb)

	if sn != nil {
		st.InSync = tabular.SameSheets(tabular.Project(sn.doc), wb, tabular.SourceSheets...)
	}
	return st
}
