package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"kindergarten_backend/internals/helpers/dbtime"
	"kindergarten_backend/internals/helpers/export"
)

// Attestation is the data printed on an enrollment certificate.
type Attestation struct {
	ChildID         uuid.UUID  `json:"childId"`
	ChildName       string     `json:"childName"`
	ClassID         *uuid.UUID `json:"classId"`
	ClassName       string     `json:"className,omitempty"`
	ParentIDs       []string   `json:"parentIds"`
	InscriptionDate string     `json:"inscriptionDate"`
	Message         string     `json:"message"`
}

func MessageFor(childName string) string {
	return "Attestation d'inscription pour l'enfant " + childName
}

// Signer menandatangani (childId, tanggal inscription) dengan HMAC-SHA256.
type Signer struct {
	secret  []byte
	baseURL string
}

func NewSigner(secret, publicBaseURL string) *Signer {
	return &Signer{secret: []byte(secret), baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *Signer) Sign(childID uuid.UUID, inscriptionDate string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(childID.String() + "|" + inscriptionDate))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(childID uuid.UUID, inscriptionDate, sig string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil || len(got) == 0 {
		return false
	}
	want, _ := hex.DecodeString(s.Sign(childID, inscriptionDate))
	return hmac.Equal(got, want)
}

// VerifyURL: link publik yang dipasang di QR.
func (s *Signer) VerifyURL(childID uuid.UUID, inscriptionDate string) string {
	q := url.Values{}
	q.Set("child", childID.String())
	q.Set("sig", s.Sign(childID, inscriptionDate))
	return s.baseURL + "/api/public/attestations/verify?" + q.Encode()
}

// RenderPDF: sertifikat A4 portrait dengan QR verifikasi di pojok kanan bawah.
func RenderPDF(a Attestation, verifyURL string, issuedAt time.Time) ([]byte, error) {
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}

	pdf := export.NewDocument("P")
	pdf.SetMargins(20, 25, 20)
	pdf.SetAutoPageBreak(false, 0)
	tr := export.Visual
	pdf.AddPage()

	pdf.SetDrawColor(60, 90, 160)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 190, 277, "D")

	pdf.SetFont(export.FontFamily, "B", 22)
	pdf.SetTextColor(40, 60, 120)
	pdf.CellFormat(0, 14, tr("ATTESTATION D'INSCRIPTION"), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(export.FontFamily, "", 13)
	class := a.ClassName
	if class == "" {
		class = "-"
	}
	body := fmt.Sprintf(
		"Nous soussignés, la direction du jardin d'enfants, attestons que l'enfant %s "+
			"est régulièrement inscrit(e) dans notre établissement depuis le %s.\n\nClasse : %s",
		a.ChildName, a.InscriptionDate, class,
	)
	pdf.MultiCell(0, 8, tr(body), "", "J", false)
	pdf.Ln(10)

	pdf.SetFont(export.FontFamily, "I", 11)
	pdf.MultiCell(0, 7, tr("Cette attestation est délivrée pour servir et valoir ce que de droit."), "", "L", false)

	pdf.SetFont(export.FontFamily, "", 11)
	pdf.SetXY(20, 200)
	pdf.CellFormat(100, 7, tr("Fait le "+dbtime.FormatDate(issuedAt)), "", 1, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(100, 7, tr("La direction"), "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("verify-qr", 150, 230, 40, 40, false, opts, 0, "")
	pdf.SetFont(export.FontFamily, "", 7)
	pdf.SetXY(140, 271)
	pdf.CellFormat(60, 4, tr("Scanner pour vérifier"), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
