// Package sheet reads and writes user lists as xlsx workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"rollcall-users/models"
)

// SheetName is the worksheet WriteUsers fills.
const SheetName = "Users"

// Header is the first row of an exported workbook.
var Header = []string{"ID", "Full Name", "Student ID", "Class Name"}

// Column positions of the draft fields, used when a workbook has no
// recognizable header row.
const (
	colFullName = iota
	colStudentID
	colClassName
)

// WriteUsers writes users to w as a single-sheet workbook.
func WriteUsers(w io.Writer, users []models.User) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "D", 22); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{u.ID, u.FullName, u.StudentID, u.ClassName}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportFile writes users to a workbook at path, replacing any existing file.
func ExportFile(path string, users []models.User) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteUsers(out, users); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadUsers reads drafts from the first sheet of the workbook in r.
//
// When the first row names the "Full Name", "Student ID" and "Class Name"
// columns (in any order, e.g. a workbook from WriteUsers) those columns
// are used; otherwise the first row is skipped as a header and columns
// A, B and C are read. Blank rows are skipped. Drafts are not validated.
func ReadUsers(r io.Reader) ([]models.Draft, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return []models.Draft{}, nil
	}

	cols := columnsOf(rows[0])
	drafts := make([]models.Draft, 0, len(rows)-1)
	for _, row := range rows[1:] {
		d := models.Draft{
			FullName:  cellAt(row, cols[colFullName]),
			StudentID: cellAt(row, cols[colStudentID]),
			ClassName: cellAt(row, cols[colClassName]),
		}
		if d == (models.Draft{}) {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// columnsOf maps the header row to field column indexes.
func columnsOf(header []string) [3]int {
	cols := [3]int{-1, -1, -1}
	for i, name := range header {
		switch normalize(name) {
		case "fullname":
			cols[colFullName] = i
		case "studentid":
			cols[colStudentID] = i
		case "classname":
			cols[colClassName] = i
		}
	}
	if cols[colFullName] < 0 || cols[colStudentID] < 0 || cols[colClassName] < 0 {
		return [3]int{colFullName, colStudentID, colClassName}
	}
	return cols
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
