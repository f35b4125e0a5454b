// Package challanstore keeps a local history of successful transfer
// uploads. The ERP itself is the system of record; this history only
// exists so operators can find the report links for challans they
// already punched.
package challanstore

import (
	"context"
	"database/sql"
	"time"

	"challanup-backend/lib/challanstore/db"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		return nil, err
	}
	return &Store{db: database}, nil
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Record struct {
	Id            int64
	ChallanNo     string
	SystemId      string
	CompanyId     string
	CompanyName   string
	BookingNo     string
	LineNo        string
	Color         string
	IssueDate     string
	TotalQuantity int64
	Report1Url    string
	Report2Url    string
	CreatedAt     time.Time
}

func (s *Store) Push(ctx context.Context, rec Record) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`insert into challans (
			challan_no, system_id, company_id, company_name,
			booking_no, line_no, color, issue_date, total_quantity,
			report1_url, report2_url, created_at
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ChallanNo, rec.SystemId, rec.CompanyId, rec.CompanyName,
		rec.BookingNo, rec.LineNo, rec.Color, rec.IssueDate, rec.TotalQuantity,
		rec.Report1Url, rec.Report2Url, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns the most recent uploads, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`select id, challan_no, system_id, company_id, company_name,
			booking_no, line_no, color, issue_date, total_quantity,
			report1_url, report2_url, created_at
		from challans
		order by created_at desc, id desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		err = rows.Scan(
			&rec.Id, &rec.ChallanNo, &rec.SystemId, &rec.CompanyId,
			&rec.CompanyName, &rec.BookingNo, &rec.LineNo, &rec.Color,
			&rec.IssueDate, &rec.TotalQuantity, &rec.Report1Url,
			&rec.Report2Url, &createdAt,
		)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindByChallanNo returns every upload recorded for a challan number,
// newest first. Re-punching a challan is an error the ERP rejects,
// but history may legitimately contain retries across days.
func (s *Store) FindByChallanNo(ctx context.Context, challanNo string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, challan_no, system_id, company_id, company_name,
			booking_no, line_no, color, issue_date, total_quantity,
			report1_url, report2_url, created_at
		from challans
		where challan_no = ?
		order by created_at desc, id desc`,
		challanNo,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		err = rows.Scan(
			&rec.Id, &rec.ChallanNo, &rec.SystemId, &rec.CompanyId,
			&rec.CompanyName, &rec.BookingNo, &rec.LineNo, &rec.Color,
			&rec.IssueDate, &rec.TotalQuantity, &rec.Report1Url,
			&rec.Report2Url, &createdAt,
		)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}
