// Package certificate composes participation certificates as PDF documents and
// serves them over HTTP.
package certificate

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/pkg/apperr"
)

// Page geometry and styling, in points on an A4 landscape page.
const (
	fontFamily = "Helvetica"

	outerBorderWidth = 10.0
	outerBorderInset = 50.0
	innerBorderWidth = 2.0
	innerBorderInset = 70.0

	dateLayout     = "January 2, 2006"
	signatureLabel = "Dekan Fakultas STEM"

	imageLogo      = "logo"
	imageSignature = "signature"
)

type rgb struct{ r, g, b int }

type textLine struct {
	text  string
	size  float64
	color rgb
	y     float64
}

var (
	outerBorderColor = rgb{200, 0, 0}
	innerBorderColor = rgb{240, 0, 0}
	accentColor      = rgb{150, 0, 0}
	mutedColor       = rgb{100, 100, 100}
	lineColor        = rgb{0, 0, 0}
)

// Request is the variable content of a certificate.
type Request struct {
	ParticipantName string
	WorkshopTitle   string
	InstitutionName string    // optional
	IssuedAt        time.Time // zero means now
}

// Config locates the static raster assets.
type Config struct {
	LogoPath      string
	SignaturePath string
}

// Renderer draws the fixed certificate layout.
type Renderer struct {
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// NewRenderer creates a renderer. Assets are read on every render so they can be replaced on disk.
func NewRenderer(cfg Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{cfg: cfg, now: time.Now, logger: logger}
}

// SetClock overrides the clock used when a request carries no issue date.
func (r *Renderer) SetClock(now func() time.Time) { r.now = now }

// Render returns the certificate as PDF bytes. Identical requests produce identical bytes.
func (r *Renderer) Render(req Request) ([]byte, error) {
	issued := req.IssuedAt
	if issued.IsZero() {
		issued = r.now()
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetCreationDate(issued)
	pdf.SetModificationDate(issued)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	w, h := pdf.GetPageSize()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.drawImage(pdf, imageLogo, r.cfg.LogoPath, w/2-150, 90, 250, 70)

	setDraw(pdf, outerBorderColor)
	pdf.SetLineWidth(outerBorderWidth)
	pdf.Rect(outerBorderInset, outerBorderInset, w-2*outerBorderInset, h-2*outerBorderInset, "D")

	setDraw(pdf, innerBorderColor)
	pdf.SetLineWidth(innerBorderWidth)
	pdf.Rect(innerBorderInset, innerBorderInset, w-2*innerBorderInset, h-2*innerBorderInset, "D")

	lines := []textLine{
		{"CERTIFICATE OF PARTICIPATION", 36, accentColor, 220},
		{"This is to certify that", 18, mutedColor, 250},
		{req.ParticipantName, 32, accentColor, 300},
		{"has successfully participated in", 18, mutedColor, 330},
		{req.WorkshopTitle, 28, accentColor, 370},
		{"We appreciate your dedication and commitment to learning.", 16, mutedColor, 400},
	}
	if inst := strings.TrimSpace(req.InstitutionName); inst != "" {
		lines = append(lines, textLine{"from " + inst, 14, mutedColor, 425})
	}
	for _, l := range lines {
		if lost := unencodable(tr, l.text); len(lost) > 0 {
			r.logger.Warn("certificate text not representable in core font",
				zap.String("text", l.text), zap.String("replaced", string(lost)))
		}
		pdf.SetFont(fontFamily, "", l.size)
		setText(pdf, l.color)
		centerText(pdf, tr(l.text), w/2, l.y)
	}

	pdf.SetFont(fontFamily, "", 14)
	setText(pdf, mutedColor)
	pdf.Text(100, h-100, issued.Format(dateLayout))

	r.drawImage(pdf, imageSignature, r.cfg.SignaturePath, w-230, h-190, 120, 80)

	setDraw(pdf, lineColor)
	pdf.SetLineWidth(1)
	pdf.Line(w-250, h-120, w-100, h-120)
	centerText(pdf, tr(signatureLabel), w-175, h-100)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Render("Failed to generate certificate", err)
	}
	return buf.Bytes(), nil
}

// unencodable returns the runes of s that the cp1252 translator replaces with '.'.
func unencodable(tr func(string) string, s string) []rune {
	var lost []rune
	for _, c := range s {
		if c >= 0x80 && tr(string(c)) == "." {
			lost = append(lost, c)
		}
	}
	return lost
}

// drawImage places an asset when it can be read. A missing file leaves a gap;
// undecodable data poisons the document and surfaces from Output.
func (r *Renderer) drawImage(pdf *fpdf.Fpdf, name, path string, x, y, w, h float64) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("certificate asset unavailable", zap.String("asset", name), zap.String("path", path), zap.Error(err))
		return
	}
	opts := fpdf.ImageOptions{ImageType: imageType(path)}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}

func centerText(pdf *fpdf.Fpdf, s string, cx, y float64) {
	pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
}

func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

var whitespace = regexp.MustCompile(`\s+`)

// Filename returns the download name for a participant's certificate.
func Filename(participantName string) string {
	name := whitespace.ReplaceAllString(participantName, "-")
	name = strings.NewReplacer(`"`, "", `\`, "", "/", "-").Replace(name)
	return "certificate-" + name + ".pdf"
}
