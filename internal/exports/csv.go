// Package exports renders admin CSV downloads of registrations and issuances.
package exports

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/stem-workshop/certificates/internal/models"
)

// Separator matches the spreadsheet locale the admins open these files with.
const Separator = ';'

const timestampLayout = "2006-01-02 15:04:05"

var (
	certificateHeader = []string{"Name", "Email", "HP", "Kelas / Jabatan", "Sekolah / Instansi", "Workshop", "Created At"}
	submissionHeader  = []string{"Name", "Employee Number", "Workshop", "Date", "Funnel", "Description", "Submitted At", "IP Address"}
)

// WriteCertificates writes issuances as CSV, timestamps rendered in loc.
func WriteCertificates(w io.Writer, list []models.CertificateIssuance, loc *time.Location) error {
	cw := newWriter(w)
	if err := cw.Write(certificateHeader); err != nil {
		return err
	}
	for _, iss := range list {
		if err := cw.Write([]string{
			iss.Name, iss.Email, iss.Phone, iss.ClassLabel, iss.Institution, iss.WorkshopTitle,
			iss.CreatedAt.In(loc).Format(timestampLayout),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSubmissions writes registrations as CSV, timestamps rendered in loc.
func WriteSubmissions(w io.Writer, list []models.Registration, loc *time.Location) error {
	cw := newWriter(w)
	if err := cw.Write(submissionHeader); err != nil {
		return err
	}
	for _, reg := range list {
		if err := cw.Write([]string{
			reg.Name, reg.EmployeeNumber, reg.WorkshopTitle, reg.Date.Format("2006-01-02"),
			string(reg.FunnelType), reg.Description, reg.SubmittedAt.In(loc).Format(timestampLayout), reg.IPAddress,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return cw
}
